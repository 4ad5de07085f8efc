package block

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// preXferSettleDelay is an undocumented device-stability workaround: a
// brief pause before every APDU exchange avoids an EE=other-error reply
// the SE05x otherwise returns under load. Preserved literally.
const preXferSettleDelay = 1 * time.Millisecond

// Xfer chunks tx into up to-254-byte I-blocks, sends them (transparently
// consuming the inter-block R-block token via Engine.SendI), then reads the
// response chain into rx, truncating rather than erroring if rx is smaller
// than the total reply — including a zero-length rx, which simply discards
// the reply and returns (0, nil). Only a nil/empty tx is rejected, since
// there is no APDU to chunk and send. Xfer always clears the exchange's
// buffers and retransmit-latch before returning, success or failure.
func (e *Engine) Xfer(tx, rx []byte) (int, error) {
	if len(tx) == 0 {
		return 0, ErrEmptyBuffer
	}
	defer e.State.ClearExchange()

	time.Sleep(preXferSettleDelay)

	if err := e.writeChain(tx); err != nil {
		return 0, err
	}
	return e.readChain(rx)
}

func (e *Engine) writeChain(tx []byte) error {
	off := 0
	for off < len(tx) {
		end := off + MaxINF
		if end > len(tx) {
			end = len(tx)
		}
		chain := end < len(tx)
		if err := e.SendI(tx[off:end], chain); err != nil {
			return err
		}
		off = end
	}
	return nil
}

func (e *Engine) readChain(rx []byte) (int, error) {
	rxLen := 0
	for {
		blk, err := e.Recv()
		if err != nil {
			return rxLen, err
		}
		if blk.Kind() != KindI {
			return rxLen, ErrUnexpectedPCB
		}

		n := len(blk.INF)
		remaining := len(rx) - rxLen
		if n > remaining {
			log.Warnf("block: rx buffer too small, truncating %d bytes to %d", n, remaining)
			n = remaining
		}
		copy(rx[rxLen:rxLen+n], blk.INF[:n])
		rxLen += n

		if !IChain(blk.PCB) {
			return rxLen, nil
		}
		if err := e.SendR(!INS(blk.PCB), EENoError); err != nil {
			return rxLen, err
		}
	}
}
