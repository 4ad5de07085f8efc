package block

import "errors"

// Sentinel errors for the block engine, in a flat var block.
var (
	ErrINFTooLong      = errors.New("block: INF exceeds 254 bytes")
	ErrPartialTransfer = errors.New("block: partial I2C transfer")
	ErrCRCMismatch     = errors.New("block: CRC mismatch")
	ErrUnexpectedPCB   = errors.New("block: unexpected PCB for this exchange")
	ErrWrongTokenNR    = errors.New("block: R-block token has wrong N(R)")
	ErrUnsupportedSReq = errors.New("block: unsupported S-block request type")
	ErrRetransmitExhausted = errors.New("block: retransmit already attempted, exchange failed")
	ErrBufferTooSmall  = errors.New("block: output buffer too small")
	ErrEmptyBuffer     = errors.New("block: nil or zero-length buffer")
)
