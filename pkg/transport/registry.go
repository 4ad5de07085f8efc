package transport

import "fmt"

// NewI2CFunc opens an I2C backend given the portion of the config spec after
// "kernel:" (or whatever scheme token the backend was registered under).
type NewI2CFunc func(spec string) (I2C, error)

// NewGPIOFunc opens a GPIO backend the same way.
type NewGPIOFunc func(spec string) (GPIO, error)

var i2cRegistry = make(map[string]NewI2CFunc)
var gpioRegistry = make(map[string]NewGPIOFunc)

// RegisterI2C registers an I2C backend under a scheme token (e.g. "kernel").
// Backends call this from an init() function.
func RegisterI2C(scheme string, newFunc NewI2CFunc) {
	i2cRegistry[scheme] = newFunc
}

// RegisterGPIO registers a GPIO backend under a scheme token
// (e.g. "kernel", "sysfs").
func RegisterGPIO(scheme string, newFunc NewGPIOFunc) {
	gpioRegistry[scheme] = newFunc
}

// NewI2C opens an I2C backend for the given scheme token and spec string.
func NewI2C(scheme, spec string) (I2C, error) {
	newFunc, ok := i2cRegistry[scheme]
	if !ok {
		return nil, fmt.Errorf("transport: unsupported i2c backend %q", scheme)
	}
	return newFunc(spec)
}

// NewGPIO opens a GPIO backend for the given scheme token and spec string.
func NewGPIO(scheme, spec string) (GPIO, error) {
	newFunc, ok := gpioRegistry[scheme]
	if !ok {
		return nil, fmt.Errorf("transport: unsupported gpio backend %q", scheme)
	}
	return newFunc(spec)
}
