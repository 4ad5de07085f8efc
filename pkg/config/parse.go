// Package config parses the session configuration string and an optional
// ini-format timing-defaults file.
package config

import (
	"fmt"
	"strings"
)

// Backend names a transport.I2C/transport.GPIO scheme-and-spec pair, e.g.
// scheme "kernel", spec "/dev/i2c-1:0x48".
type Backend struct {
	Scheme string
	Spec   string
}

// Config is the parsed form of the open() configuration string
// "i2c:<i2c-spec>[@gpio:<gpio-spec>]".
type Config struct {
	I2C  Backend
	GPIO Backend // Scheme == "" when no GPIO token was present.
}

// Parse splits raw on "@" into an i2c token (required) and an optional gpio
// token, each itself of the form "<kind>:<scheme>:<spec...>".
func Parse(raw string) (Config, error) {
	var cfg Config
	tokens := strings.Split(raw, "@")

	var sawI2C bool
	for _, tok := range tokens {
		kind, rest, ok := strings.Cut(tok, ":")
		if !ok {
			return Config{}, fmt.Errorf("config: malformed token %q", tok)
		}
		scheme, spec, ok := strings.Cut(rest, ":")
		if !ok {
			return Config{}, fmt.Errorf("config: malformed token %q, want <kind>:<scheme>:<spec>", tok)
		}
		switch kind {
		case "i2c":
			cfg.I2C = Backend{Scheme: scheme, Spec: spec}
			sawI2C = true
		case "gpio":
			cfg.GPIO = Backend{Scheme: scheme, Spec: spec}
		default:
			return Config{}, fmt.Errorf("config: unknown token kind %q", kind)
		}
	}
	if !sawI2C {
		return Config{}, fmt.Errorf("config: missing required i2c: token")
	}
	return cfg, nil
}

// HasGPIO reports whether a gpio: token was present.
func (c Config) HasGPIO() bool {
	return c.GPIO.Scheme != ""
}
