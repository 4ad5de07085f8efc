package se05x

import "errors"

var (
	ErrConfigParse  = errors.New("se05x: could not parse configuration string")
	ErrPowerAction  = errors.New("se05x: power sequencing failed")
	ErrNotSupported = errors.New("se05x: capability tag not supported")
)
