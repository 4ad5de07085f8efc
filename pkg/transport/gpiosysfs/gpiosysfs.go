//go:build linux

// Package gpiosysfs implements the transport.GPIO contract against the
// legacy /sys/class/gpio sysfs interface, for kernels or platforms where the
// gpio character device is unavailable.
package gpiosysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cmuellner/libifdse/pkg/transport"
)

const sysfsRoot = "/sys/class/gpio"

func init() {
	transport.RegisterGPIO("sysfs", New)
}

// Pin is a transport.GPIO backed by a sysfs-exported GPIO line. It keeps
// value open for the life of the Pin rather than reopening it on every
// Enable/Disable.
type Pin struct {
	num   int
	value *os.File
}

// New opens spec, formatted "[n]<gpio-number>" (an "n" prefix marks
// active-low), exporting the pin if it is not already exported, writing
// active_low, and setting direction=out.
func New(spec string) (transport.GPIO, error) {
	activeLow := strings.HasPrefix(spec, "n")
	if activeLow {
		spec = spec[1:]
	}
	num, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("gpiosysfs: invalid pin number %q: %w", spec, err)
	}

	pinDir := filepath.Join(sysfsRoot, fmt.Sprintf("gpio%d", num))
	if _, err := os.Stat(pinDir); os.IsNotExist(err) {
		if err := os.WriteFile(filepath.Join(sysfsRoot, "export"), []byte(strconv.Itoa(num)), 0200); err != nil {
			return nil, fmt.Errorf("gpiosysfs: export pin %d: %w", num, err)
		}
	}
	activeLowVal := "0"
	if activeLow {
		activeLowVal = "1"
	}
	if err := os.WriteFile(filepath.Join(pinDir, "active_low"), []byte(activeLowVal), 0200); err != nil {
		return nil, fmt.Errorf("gpiosysfs: set active_low for pin %d: %w", num, err)
	}
	if err := os.WriteFile(filepath.Join(pinDir, "direction"), []byte("out"), 0200); err != nil {
		return nil, fmt.Errorf("gpiosysfs: set direction for pin %d: %w", num, err)
	}
	value, err := os.OpenFile(filepath.Join(pinDir, "value"), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("gpiosysfs: open value for pin %d: %w", num, err)
	}
	p := &Pin{num: num, value: value}
	if err := p.setRaw(0); err != nil {
		value.Close()
		return nil, fmt.Errorf("gpiosysfs: initialize pin %d: %w", num, err)
	}
	return p, nil
}

// Enable and Disable write logical 1/0; the kernel applies active_low
// inversion itself once the sysfs attribute above is set.
func (p *Pin) Enable() error {
	return p.setRaw(1)
}

func (p *Pin) Disable() error {
	return p.setRaw(0)
}

func (p *Pin) setRaw(v int) error {
	if _, err := p.value.Seek(0, 0); err != nil {
		return err
	}
	_, err := p.value.WriteString(strconv.Itoa(v))
	return err
}

func (p *Pin) Close() error {
	p.value.Close()
	unexport := filepath.Join(sysfsRoot, "unexport")
	return os.WriteFile(unexport, []byte(strconv.Itoa(p.num)), 0200)
}

var _ transport.GPIO = (*Pin)(nil)
