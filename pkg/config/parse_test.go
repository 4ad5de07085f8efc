package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseI2COnly(t *testing.T) {
	cfg, err := Parse("i2c:kernel:/dev/i2c-1:0x48")
	require.NoError(t, err)
	assert.Equal(t, Backend{Scheme: "kernel", Spec: "/dev/i2c-1:0x48"}, cfg.I2C)
	assert.False(t, cfg.HasGPIO())
}

func TestParseI2CAndGPIO(t *testing.T) {
	cfg, err := Parse("i2c:kernel:/dev/i2c-1:0x48@gpio:kernel:0:n17")
	require.NoError(t, err)
	assert.Equal(t, Backend{Scheme: "kernel", Spec: "/dev/i2c-1:0x48"}, cfg.I2C)
	assert.Equal(t, Backend{Scheme: "kernel", Spec: "0:n17"}, cfg.GPIO)
	assert.True(t, cfg.HasGPIO())
}

func TestParseSysfsGPIO(t *testing.T) {
	cfg, err := Parse("i2c:kernel:/dev/i2c-1:72@gpio:sysfs:n17")
	require.NoError(t, err)
	assert.Equal(t, Backend{Scheme: "sysfs", Spec: "n17"}, cfg.GPIO)
}

func TestParseRejectsMissingI2C(t *testing.T) {
	_, err := Parse("gpio:sysfs:17")
	assert.Error(t, err)
}

func TestParseRejectsMalformedToken(t *testing.T) {
	_, err := Parse("i2c")
	assert.Error(t, err)
}
