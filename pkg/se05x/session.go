// Package se05x is the session facade: lifecycle management (open, power
// up/down, warm reset, transceive, close) over the block engine, matching
// the PC/SC IFD handler actions named in §4.8 one for one.
package se05x

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cmuellner/libifdse/pkg/atr"
	"github.com/cmuellner/libifdse/pkg/block"
	"github.com/cmuellner/libifdse/pkg/config"
	"github.com/cmuellner/libifdse/pkg/transport"
)

// Session is bound to one I2C slave and optionally one GPIO reset line. It
// is not safe for concurrent use: callers serialize power_up -> [xfer]* ->
// power_down themselves.
type Session struct {
	i2c     *transport.Guarded
	gpio    transport.GPIO
	hasGPIO bool

	state  *block.State
	engine *block.Engine
	timing config.Timing

	atrCache []byte
}

// Open parses configString (see pkg/config), opens the I2C and optional
// GPIO backends, and runs power_down -> sleep PWT -> power_up -> warm_reset
// to populate the ATR cache.
func Open(configString string) (*Session, error) {
	cfg, err := config.Parse(configString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	timing := config.DefaultTiming()

	rawI2C, err := transport.NewI2C(cfg.I2C.Scheme, cfg.I2C.Spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	guarded := transport.NewGuarded(rawI2C, time.Duration(timing.GuardTimeUS)*time.Microsecond, timing.MaxRetries)

	var gpio transport.GPIO = transport.NullGPIO{}
	hasGPIO := cfg.HasGPIO()
	if hasGPIO {
		gpio, err = transport.NewGPIO(cfg.GPIO.Scheme, cfg.GPIO.Spec)
		if err != nil {
			rawI2C.Close()
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	state := block.NewState()
	sess := &Session{
		i2c:     guarded,
		gpio:    gpio,
		hasGPIO: hasGPIO,
		state:   state,
		engine:  block.NewEngine(guarded, state, timing.MaxRetries),
		timing:  timing,
	}

	if err := sess.PowerDown(); err != nil {
		sess.Close()
		return nil, err
	}
	time.Sleep(time.Duration(timing.PowerWakeTimeMS) * time.Millisecond)
	if err := sess.PowerUp(); err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.WarmReset(); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// PowerUp enables the GPIO reset line if one is configured, otherwise sends
// CMD_RESET (hard reset). It clears sequence state and waits PWT.
func (s *Session) PowerUp() error {
	s.state.ResetSequence()
	if s.hasGPIO {
		if err := s.gpio.Enable(); err != nil {
			return fmt.Errorf("%w: %v", ErrPowerAction, err)
		}
	} else if err := s.engine.HardReset(); err != nil {
		return fmt.Errorf("%w: %v", ErrPowerAction, err)
	}
	time.Sleep(time.Duration(s.timing.PowerWakeTimeMS) * time.Millisecond)
	return nil
}

// PowerDown disables the GPIO line (a no-op if none is configured).
func (s *Session) PowerDown() error {
	if err := s.gpio.Disable(); err != nil {
		return fmt.Errorf("%w: %v", ErrPowerAction, err)
	}
	return nil
}

// WarmReset clears sequence state, sends SOFT_RESET, and caches the
// returned ATR, releasing any previously cached buffer first.
func (s *Session) WarmReset() error {
	s.state.ResetSequence()
	atrBytes, err := s.engine.SoftReset()
	if err != nil {
		return err
	}
	s.atrCache = atrBytes
	log.Debugf("se05x: cached raw ATR (%d bytes)", len(s.atrCache))
	return nil
}

// GetATR rewrites the cached raw ATR into a conforming ISO 7816-3 ATR in
// buf, returning the number of bytes written.
func (s *Session) GetATR(buf []byte) (int, error) {
	if s.atrCache == nil {
		return 0, ErrNotSupported
	}
	n, err := atr.Rewrite(buf, s.atrCache)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Xfer exchanges one APDU: tx is chunked into I-blocks, the response chain
// is reassembled into rx (truncating, not erroring, if rx is too small).
func (s *Session) Xfer(tx, rx []byte) (int, error) {
	return s.engine.Xfer(tx, rx)
}

// Close releases the I2C and GPIO handles and frees the cached ATR.
func (s *Session) Close() error {
	s.atrCache = nil
	gpioErr := s.gpio.Close()
	i2cErr := s.i2c.Close()
	if i2cErr != nil {
		return i2cErr
	}
	return gpioErr
}
