// Package atr rewrites the SE05x's native, non-ISO-7816-3-compliant ATR
// into a conforming one, extracting the device's historical bytes and
// wrapping them in a fixed T=0/T=1 prologue.
package atr

import "errors"

// prologue is the fixed 8-byte conforming-ATR header. out[1] (T0) is later
// OR'd with the historical-byte count.
var prologue = [8]byte{0x3B, 0xF0, 0x96, 0x00, 0x00, 0x80, 0x11, 0xFE}

// MaxHistoricalBytes is the largest historical-byte block this rewrite
// supports; T0's low nibble only has four bits for the count.
const MaxHistoricalBytes = 15

// ErrHistoricalBytesTooLong is returned when the real ATR's historical-byte
// block exceeds MaxHistoricalBytes, and also when out is too short to hold
// the rewritten ATR.
var ErrHistoricalBytesTooLong = errors.New("atr: historical bytes exceed 15")

// Rewrite extracts historical bytes from real (laid out as
// PVER(1) VID(5) DLLP_LEN(1) DLLP(..) PLID(1) PLP_LEN(1) PLP(..) HB_LEN(1) HB(..))
// and writes a conforming ATR into out, returning the number of bytes
// written. out must have capacity for at least 9+MaxHistoricalBytes bytes.
func Rewrite(out []byte, real []byte) (int, error) {
	hb, err := historicalBytes(real)
	if err != nil {
		return 0, err
	}
	if len(hb) > MaxHistoricalBytes {
		return 0, ErrHistoricalBytesTooLong
	}
	need := len(prologue) + len(hb) + 1
	if len(out) < need {
		return 0, ErrHistoricalBytesTooLong
	}

	copy(out, prologue[:])
	out[1] |= byte(len(hb))
	copy(out[len(prologue):], hb)

	tck := byte(0)
	for _, b := range out[1 : len(prologue)+len(hb)] {
		tck ^= b
	}
	out[len(prologue)+len(hb)] = tck

	return need, nil
}

// historicalBytes walks the real ATR's variable-length header to locate and
// slice out its historical-byte block.
func historicalBytes(real []byte) ([]byte, error) {
	// off = 6 (PVER+VID) + 1 (DLLP_LEN) + real[6] (DLLP)
	if len(real) < 7 {
		return nil, errShortATR
	}
	off := 6 + 1 + int(real[6])
	off++ // PLID
	if off >= len(real) {
		return nil, errShortATR
	}
	off += 1 + int(real[off]) // PLP_LEN field plus PLP bytes
	if off >= len(real) {
		return nil, errShortATR
	}
	hbLen := int(real[off])
	off++
	if off+hbLen > len(real) {
		return nil, errShortATR
	}
	return real[off : off+hbLen], nil
}

var errShortATR = errors.New("atr: real ATR too short to contain its declared fields")
