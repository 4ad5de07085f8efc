//go:build linux

// Package all blank-imports every concrete transport backend so their
// init() functions register with pkg/transport before any config string is
// parsed. Anything that opens a session by scheme name (pkg/se05x.Open)
// must pull this package in, directly or transitively.
package all

import (
	_ "github.com/cmuellner/libifdse/pkg/transport/gpiocdev"
	_ "github.com/cmuellner/libifdse/pkg/transport/gpiosysfs"
	_ "github.com/cmuellner/libifdse/pkg/transport/i2cdev"
)
