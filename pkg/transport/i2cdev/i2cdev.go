//go:build linux

// Package i2cdev implements the transport.I2C contract against a Linux
// character device (/dev/i2c-N), binding the 7-bit slave address with the
// I2C_SLAVE ioctl and then issuing plain read(2)/write(2) calls, the same
// way the kernel's i2c-dev ABI expects a single-address, non-combined
// transaction to be driven.
package i2cdev

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/cmuellner/libifdse/pkg/transport"
)

const i2cSlave = 0x0703 // I2C_SLAVE ioctl, from linux/i2c-dev.h

func init() {
	transport.RegisterI2C("kernel", New)
}

// Device is a transport.I2C backed by a Linux character device.
type Device struct {
	fd int
}

// New opens spec, formatted "<device-path>:<slave-addr>" where slave-addr is
// decimal or 0x-prefixed hex, and binds the slave address with I2C_SLAVE.
func New(spec string) (transport.I2C, error) {
	path, addrStr, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("i2cdev: malformed spec %q, want <device-path>:<slave-addr>", spec)
	}
	addr, err := parseAddr(addrStr)
	if err != nil {
		return nil, fmt.Errorf("i2cdev: %w", err)
	}
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2cdev: open %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("i2cdev: bind slave address %#02x: %w", addr, err)
	}
	return &Device{fd: fd}, nil
}

func parseAddr(s string) (uint8, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid slave address %q: %w", s, err)
	}
	return uint8(v), nil
}

func (d *Device) Read(buf []byte) (int, error) {
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		return n, mapNack(err)
	}
	return n, nil
}

func (d *Device) Write(buf []byte) (int, error) {
	n, err := unix.Write(d.fd, buf)
	if err != nil {
		return n, mapNack(err)
	}
	return n, nil
}

func (d *Device) Close() error {
	return unix.Close(d.fd)
}

// mapNack folds the three kernel error codes that mean "slave not ready"
// into transport.ErrNotReady, per the I2C transport contract.
func mapNack(err error) error {
	if errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ETIMEDOUT) || errors.Is(err, unix.EREMOTEIO) {
		return transport.ErrNotReady
	}
	return err
}

var _ transport.I2C = (*Device)(nil)
