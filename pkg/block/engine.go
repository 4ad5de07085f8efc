package block

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/cmuellner/libifdse/pkg/transport"
)

// ErrIterationLimitExceeded is returned when Recv's bounded WTX/retransmit
// loop runs out of iterations without reaching a real block. The source
// recurses here instead; a pathological device streaming WTX forever would
// grow the call stack without bound, so this is implemented as an explicit
// loop capped at the same ceiling as the I2C-level retry count.
var ErrIterationLimitExceeded = errors.New("block: too many WTX/retransmit rounds")

// Engine drives the send/receive half of the T=1 block protocol over a
// transport.I2C handle, using State for sequence numbers, the
// retransmit-latch, and the cached tx buffer a retransmit resends verbatim.
type Engine struct {
	IO    transport.I2C
	State *State

	// MaxIterations bounds the WTX-echo / retransmit loop in Recv. Set to
	// at least max_retries (block_waiting_time_ms*1000/minimum_polling_time_us).
	MaxIterations int
}

// NewEngine builds an Engine over io, sharing state, with recv loops capped
// at maxIterations rounds.
func NewEngine(io transport.I2C, state *State, maxIterations int) *Engine {
	return &Engine{IO: io, State: state, MaxIterations: maxIterations}
}

func (e *Engine) sendRaw(pcb byte, inf []byte) error {
	buf, err := Encode(NADHost, pcb, inf)
	if err != nil {
		return err
	}
	e.State.cacheTx(buf)
	n, err := e.IO.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return ErrPartialTransfer
	}
	return nil
}

// SendI sends an I-block carrying inf, toggling N(S) immediately after the
// write. If chain is true, it then consumes the peer's token-passing
// R-block: EE must be 0 and N(R) must equal the just-toggled N(S).
func (e *Engine) SendI(inf []byte, chain bool) error {
	if len(inf) > MaxINF {
		return ErrINFTooLong
	}
	pcb := IPCB(e.State.NS, chain)
	if err := e.sendRaw(pcb, inf); err != nil {
		return err
	}
	e.State.NS = !e.State.NS

	if !chain {
		return nil
	}
	token, err := e.Recv()
	if err != nil {
		return err
	}
	if token.Kind() != KindR {
		return ErrUnexpectedPCB
	}
	if REE(token.PCB) != EENoError {
		return ErrUnexpectedPCB
	}
	if RNR(token.PCB) != e.State.NS {
		return ErrWrongTokenNR
	}
	return nil
}

// SendR sends an R-block acknowledging (or flagging an error on) a received
// chained I-block.
func (e *Engine) SendR(nr bool, ee byte) error {
	return e.sendRaw(RPCB(nr, ee), nil)
}

// SendS sends a supervisory block. response selects request (false) or
// response (true) direction.
func (e *Engine) SendS(response bool, typ byte, inf []byte) error {
	return e.sendRaw(SPCB(response, typ), inf)
}

// Recv reads one block, transparently handling WTX S-block requests (by
// echoing a WTX response and continuing to wait) and R-block errors (by
// retransmitting the cached tx buffer once, per the retransmit-latch rule).
// It returns the first block that is neither of those.
func (e *Engine) Recv() (Block, error) {
	for i := 0; i < e.MaxIterations; i++ {
		blk, err := Decode(e.State.RxBuf[:], e.IO)
		if err != nil {
			return Block{}, err
		}

		switch blk.Kind() {
		case KindS:
			if SResponse(blk.PCB) {
				return blk, nil
			}
			if SType(blk.PCB) != STypeWTX {
				return Block{}, ErrUnsupportedSReq
			}
			var echo []byte
			if len(blk.INF) > 0 {
				echo = blk.INF[:1]
			}
			if err := e.SendS(true, STypeWTX, echo); err != nil {
				return Block{}, err
			}
			log.Debugf("block: WTX extension, waiting for the real block")
			continue

		case KindR:
			if REE(blk.PCB) == EENoError {
				return blk, nil
			}
			if e.State.RetransmitLatch {
				return Block{}, ErrRetransmitExhausted
			}
			e.State.RetransmitLatch = true
			log.Warnf("block: R-block error %d, retransmitting cached block", REE(blk.PCB))
			n, err := e.IO.Write(e.State.TxBuf[:e.State.TxLen])
			if err != nil {
				return Block{}, err
			}
			if n != e.State.TxLen {
				return Block{}, ErrPartialTransfer
			}
			continue

		default: // I-block
			return blk, nil
		}
	}
	return Block{}, ErrIterationLimitExceeded
}

// SoftReset sends CMD_SOFT_RESET and returns the ATR INF from the matching
// S-block response.
func (e *Engine) SoftReset() ([]byte, error) {
	if err := e.SendS(false, STypeSOFTRESET, nil); err != nil {
		return nil, err
	}
	blk, err := e.Recv()
	if err != nil {
		return nil, err
	}
	if blk.Kind() != KindS || !SResponse(blk.PCB) || SType(blk.PCB) != STypeSOFTRESET {
		return nil, ErrUnexpectedPCB
	}
	return append([]byte(nil), blk.INF...), nil
}

// HardReset sends CMD_RESET, used when no GPIO line is available. It does
// not touch the ATR cache; the caller decides whether to do so.
func (e *Engine) HardReset() error {
	if err := e.SendS(false, STypeRESET, nil); err != nil {
		return err
	}
	blk, err := e.Recv()
	if err != nil {
		return err
	}
	if blk.Kind() != KindS || !SResponse(blk.PCB) || SType(blk.PCB) != STypeRESET {
		return ErrUnexpectedPCB
	}
	return nil
}
