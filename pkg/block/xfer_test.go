package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXferSingleBlockAPDU(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	f.queueReply(NADSE, IPCB(false, false), []byte{0x90, 0x00})

	rx := make([]byte, 2)
	n, err := e.Xfer([]byte{0x00, 0xA4, 0x04, 0x00}, rx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x90, 0x00}, rx)
	assert.False(t, e.State.RetransmitLatch)
	assert.Equal(t, 0, e.State.TxLen)
}

func TestXferChainedTx(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	// Token for the first (chained) I-block: N(R) = new N(S) = true.
	f.queueReply(NADSE, RPCB(true, EENoError), nil)
	f.queueReply(NADSE, IPCB(false, false), []byte{0x90, 0x00})

	tx := make([]byte, 300)
	for i := range tx {
		tx[i] = byte(i)
	}
	rx := make([]byte, 2)
	_, err := e.Xfer(tx, rx)
	require.NoError(t, err)

	require.Len(t, f.writes, 2, "two I-blocks on the wire")
	assert.Equal(t, IPCB(false, true), f.writes[0][1], "block 1: chain set, N(S)=0")
	assert.Equal(t, byte(254), f.writes[0][2])
	assert.Equal(t, IPCB(true, false), f.writes[1][1], "block 2: no chain, N(S)=1")
	assert.Equal(t, byte(46), f.writes[1][2])
}

func TestXferChainedRx(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	inf1 := make([]byte, 254)
	for i := range inf1 {
		inf1[i] = byte(i)
	}
	inf2 := make([]byte, 46)
	for i := range inf2 {
		inf2[i] = byte(0xA0 + i)
	}
	f.queueReply(NADSE, IPCB(false, true), inf1)  // chain bit set, N(S)=0
	f.queueReply(NADSE, IPCB(true, false), inf2)  // no chain, N(S)=1

	rx := make([]byte, 300)
	n, err := e.Xfer([]byte{0x00}, rx)
	require.NoError(t, err)
	assert.Equal(t, 300, n)
	assert.Equal(t, inf1, rx[:254])
	assert.Equal(t, inf2, rx[254:300])

	// One ack R-block should have gone out between the two I-blocks (plus
	// the single outbound request block = 2 writes total).
	require.Len(t, f.writes, 2)
	assert.Equal(t, RPCB(true, EENoError), f.writes[1][1])
}

func TestXferWTXDuringReceive(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	f.queueReply(NADSE, SPCB(false, STypeWTX), []byte{0xAA})
	f.queueReply(NADSE, IPCB(false, false), []byte{0x90, 0x00})

	rx := make([]byte, 2)
	n, err := e.Xfer([]byte{0x00, 0xA4, 0x04, 0x00}, rx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x90, 0x00}, rx)
}

func TestXferRetransmitThenSuccess(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	f.queueReply(NADSE, RPCB(false, EEOtherError), nil)
	f.queueReply(NADSE, IPCB(false, false), []byte{0x90, 0x00})

	rx := make([]byte, 2)
	n, err := e.Xfer([]byte{0x00, 0xA4, 0x04, 0x00}, rx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	// writes: original I-block, retransmit of the same I-block.
	require.Len(t, f.writes, 2)
	assert.Equal(t, f.writes[0], f.writes[1])
}

func TestXferTruncation(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	f.queueReply(NADSE, IPCB(false, false), []byte{0x01, 0x02, 0x03, 0x04})

	rx := make([]byte, 2)
	n, err := e.Xfer([]byte{0x00}, rx)
	require.NoError(t, err, "truncation must not be an error")
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x01, 0x02}, rx)
}

func TestXferRejectsEmptyTx(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	_, err := e.Xfer(nil, make([]byte, 1))
	assert.ErrorIs(t, err, ErrEmptyBuffer, "no APDU to send")

	_, err = e.Xfer([]byte{}, make([]byte, 1))
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestXferNilRxTruncatesToZero(t *testing.T) {
	f := &fakeI2C{}
	e := newTestEngine(f)

	f.queueReply(NADSE, IPCB(false, false), []byte{0x90, 0x00})

	n, err := e.Xfer([]byte{0x01}, nil)
	require.NoError(t, err, "zero-length rx must truncate, not error")
	assert.Equal(t, 0, n)
}
