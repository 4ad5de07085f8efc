//go:build linux

// Package gpiocdev implements the transport.GPIO contract against a Linux
// GPIO character device line, using github.com/warthog618/go-gpiocdev the
// way its own driver packages (e.g. spi) request and drive output lines.
package gpiocdev

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/warthog618/go-gpiocdev"

	"github.com/cmuellner/libifdse/pkg/transport"
)

func init() {
	transport.RegisterGPIO("kernel", New)
}

// Line is a transport.GPIO backed by a requested gpiocdev output line.
type Line struct {
	line *gpiocdev.Line
	// activeLow inverts Enable/Disable so callers always think in terms of
	// "line asserted" regardless of the reset circuit's polarity.
	activeLow bool
}

// New opens spec, formatted "<chip-index>:[n]<line-offset>", e.g. "0:17" or
// "0:n17" for an active-low line, opens /dev/gpiochip<chip-index> and
// requests the line as an output, initially deasserted.
func New(spec string) (transport.GPIO, error) {
	chipIdx, offsetTok, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("gpiocdev: malformed spec %q, want <chip-index>:[n]<offset>", spec)
	}
	activeLow := strings.HasPrefix(offsetTok, "n")
	if activeLow {
		offsetTok = offsetTok[1:]
	}
	offset, err := strconv.Atoi(offsetTok)
	if err != nil {
		return nil, fmt.Errorf("gpiocdev: invalid line offset %q: %w", offsetTok, err)
	}
	chip := fmt.Sprintf("/dev/gpiochip%s", chipIdx)

	initial := 0
	if activeLow {
		initial = 1
	}
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, fmt.Errorf("gpiocdev: request %s line %d: %w", chip, offset, err)
	}
	return &Line{line: line, activeLow: activeLow}, nil
}

func (l *Line) Enable() error {
	return l.line.SetValue(l.assertedValue())
}

func (l *Line) Disable() error {
	return l.line.SetValue(1 - l.assertedValue())
}

func (l *Line) assertedValue() int {
	if l.activeLow {
		return 0
	}
	return 1
}

func (l *Line) Close() error {
	return l.line.Close()
}

var _ transport.GPIO = (*Line)(nil)
