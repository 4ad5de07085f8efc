// Package kerkey implements the simpler Kerkey device: a minimal
// length-prefixed command/response protocol over the same I2C/GPIO
// collaborator interfaces the SE05x block engine uses, specified only at
// this interface level (distinct wire contract, same transport package).
package kerkey

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cmuellner/libifdse/pkg/transport"
)

// powerCycleDelay is the settle time held on either side of a GPIO power
// cycle for this device.
const powerCycleDelay = 200 * time.Millisecond

const cmdGetATR byte = 0x01

// Device is a Kerkey device session bound to an I2C slave and a GPIO
// power/reset line.
type Device struct {
	i2c  transport.I2C
	gpio transport.GPIO
}

// New wraps an already-opened I2C handle and GPIO line as a Kerkey device.
func New(i2c transport.I2C, gpio transport.GPIO) *Device {
	return &Device{i2c: i2c, gpio: gpio}
}

// PowerCycle disables then re-enables the GPIO line, holding
// powerCycleDelay on each side.
func (d *Device) PowerCycle() error {
	if err := d.gpio.Disable(); err != nil {
		return err
	}
	time.Sleep(powerCycleDelay)
	if err := d.gpio.Enable(); err != nil {
		return err
	}
	time.Sleep(powerCycleDelay)
	return nil
}

// GetATR issues the get-ATR command and reads back the device's ATR bytes.
//
// The response header is a big-endian 16-bit length field, but this
// device's firmware only honors the low 8 bits of it (`& 0x00ff`),
// discarding the high byte's payload-length bits entirely. That is a wire
// contract of the real device, not a bug in this client; it is preserved
// literally rather than "fixed" to read the full 16 bits.
func (d *Device) GetATR() ([]byte, error) {
	if _, err := d.i2c.Write([]byte{cmdGetATR}); err != nil {
		return nil, err
	}

	header := make([]byte, 2)
	if _, err := d.i2c.Read(header); err != nil {
		return nil, err
	}
	lengthField := uint16(header[0])<<8 | uint16(header[1])
	length := int(lengthField & 0x00ff)
	if lengthField&0xff00 != 0 {
		log.Warnf("kerkey: declared length %d truncated by 8-bit mask to %d", lengthField, length)
	}

	if length == 0 {
		return nil, nil
	}
	payload := make([]byte, length)
	if _, err := d.i2c.Read(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Close releases the I2C and GPIO handles.
func (d *Device) Close() error {
	gpioErr := d.gpio.Close()
	i2cErr := d.i2c.Close()
	if i2cErr != nil {
		return i2cErr
	}
	return gpioErr
}
