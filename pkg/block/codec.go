package block

import (
	log "github.com/sirupsen/logrus"

	"github.com/cmuellner/libifdse/internal/crc16x25"
	"github.com/cmuellner/libifdse/pkg/transport"
)

// Encode builds the wire bytes for a single block: NAD, PCB, LEN, INF, then
// CRC-16/X.25 over NAD||PCB||LEN||INF written high byte first.
func Encode(nad, pcb byte, inf []byte) ([]byte, error) {
	if len(inf) > MaxINF {
		return nil, ErrINFTooLong
	}
	buf := make([]byte, 3+len(inf)+2)
	buf[0] = nad
	buf[1] = pcb
	buf[2] = byte(len(inf))
	copy(buf[3:], inf)
	crc := crc16x25.Bytes(buf[:3+len(inf)])
	hi, lo := crc16x25.HiLo(crc)
	buf[3+len(inf)] = hi
	buf[3+len(inf)+1] = lo
	return buf, nil
}

// rxReadSize is the size of the first of the two reads decode performs: the
// 3-byte prologue plus the next two bytes on the wire (the epilogue when LEN
// is 0), matching the source's two-read sequence rather than a single
// contiguous read. See the buffer layout note in Decode's doc comment.
const rxReadSize = 5

// Decode reads one block off r into scratch (which must have capacity for
// 3+254+2 bytes) and validates it.
//
// The read happens in two steps, matching the original two-read contract:
// first 5 bytes (scratch[0:5]), then, if LEN>0, LEN more bytes appended at
// scratch[5:]. Because the second read continues where the first stopped,
// scratch ends up holding the block contiguously in wire order,
// NAD PCB LEN INF CRC_hi CRC_lo, so INF is scratch[3:3+LEN] and the CRC is
// scratch[3+LEN:5+LEN].
func Decode(scratch []byte, r transport.I2C) (Block, error) {
	if len(scratch) < rxReadSize {
		return Block{}, ErrBufferTooSmall
	}
	n, err := r.Read(scratch[0:rxReadSize])
	if err != nil {
		return Block{}, err
	}
	if n != rxReadSize {
		return Block{}, ErrPartialTransfer
	}
	nad := scratch[0]
	pcb := scratch[1]
	length := scratch[2]

	if length > MaxINF {
		return Block{}, ErrUnexpectedPCB
	}

	if length > 0 {
		if len(scratch) < rxReadSize+int(length) {
			return Block{}, ErrBufferTooSmall
		}
		n, err := r.Read(scratch[rxReadSize : rxReadSize+int(length)])
		if err != nil {
			return Block{}, err
		}
		if n != int(length) {
			return Block{}, ErrPartialTransfer
		}
	}
	inf := scratch[3 : 3+int(length)]
	crcHi, crcLo := scratch[3+int(length)], scratch[4+int(length)]

	if nad != NADSE {
		log.Warnf("block: unexpected NAD %#02x (want %#02x), continuing", nad, NADSE)
	}

	wantHi, wantLo := crc16x25.HiLo(crc16x25.Bytes(scratch[:3+int(length)]))
	if wantHi != crcHi || wantLo != crcLo {
		return Block{}, ErrCRCMismatch
	}

	out := Block{NAD: nad, PCB: pcb, LEN: length}
	out.INF = append([]byte{}, inf...)
	return out, nil
}
