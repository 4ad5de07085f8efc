package se05x

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmuellner/libifdse/pkg/block"
	"github.com/cmuellner/libifdse/pkg/transport"
)

// fakeI2C streams canned block replies and records every write, mirroring
// pkg/block's own test double but living here since pkg/block's is
// unexported to its package.
type fakeI2C struct {
	writes   [][]byte
	replies  [][]byte
	replyIdx int
	cursor   int
}

func (f *fakeI2C) Write(p []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeI2C) Read(buf []byte) (int, error) {
	if f.replyIdx >= len(f.replies) {
		return 0, errors.New("fakeI2C: no more replies queued")
	}
	cur := f.replies[f.replyIdx]
	n := copy(buf, cur[f.cursor:])
	f.cursor += n
	if f.cursor >= len(cur) {
		f.replyIdx++
		f.cursor = 0
	}
	return n, nil
}

func (f *fakeI2C) Close() error { return nil }

func (f *fakeI2C) queueReply(nad, pcb byte, inf []byte) {
	buf, err := block.Encode(nad, pcb, inf)
	if err != nil {
		panic(err)
	}
	f.replies = append(f.replies, buf)
}

type fakeGPIO struct {
	enabled bool
	closed  bool
}

func (g *fakeGPIO) Enable() error  { g.enabled = true; return nil }
func (g *fakeGPIO) Disable() error { g.enabled = false; return nil }
func (g *fakeGPIO) Close() error   { g.closed = true; return nil }

var sharedI2C *fakeI2C
var sharedGPIO *fakeGPIO

func init() {
	transport.RegisterI2C("fake", func(spec string) (transport.I2C, error) {
		return sharedI2C, nil
	})
	transport.RegisterGPIO("fake", func(spec string) (transport.GPIO, error) {
		return sharedGPIO, nil
	})
}

func newOpenedSession(t *testing.T, atrBytes []byte) *Session {
	t.Helper()
	sharedI2C = &fakeI2C{}
	sharedGPIO = &fakeGPIO{}
	sharedI2C.queueReply(block.NADSE, block.SPCB(true, block.STypeSOFTRESET), atrBytes)

	sess, err := Open("i2c:fake:whatever@gpio:fake:whatever")
	require.NoError(t, err)
	return sess
}

func TestOpenRunsPowerSequenceAndCachesATR(t *testing.T) {
	atrBytes := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	sess := newOpenedSession(t, atrBytes)

	assert.Equal(t, atrBytes, sess.atrCache)
	assert.True(t, sharedGPIO.enabled, "GPIO should be enabled by power_up")
}

func TestGetATRRewritesCachedATR(t *testing.T) {
	sess := newOpenedSession(t, []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	out := make([]byte, 32)
	n, err := sess.GetATR(out)
	require.NoError(t, err)
	assert.Equal(t, byte(0x3B), out[0])
	assert.Equal(t, 9, n)
}

func TestXferAfterOpen(t *testing.T) {
	sess := newOpenedSession(t, []byte{0x11})
	sharedI2C.queueReply(block.NADSE, block.IPCB(false, false), []byte{0x90, 0x00})

	rx := make([]byte, 2)
	n, err := sess.Xfer([]byte{0x00, 0xA4, 0x04, 0x00}, rx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x90, 0x00}, rx)
}

func TestCloseReleasesHandles(t *testing.T) {
	sess := newOpenedSession(t, []byte{0x11})
	require.NoError(t, sess.Close())
	assert.True(t, sharedGPIO.closed)
	assert.Nil(t, sess.atrCache)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open("not-a-config")
	assert.ErrorIs(t, err, ErrConfigParse)
}
