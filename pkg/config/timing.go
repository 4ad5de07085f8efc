package config

import "gopkg.in/ini.v1"

// Timing holds the session timing parameters. Zero-value Timing is
// meaningless; use DefaultTiming() or LoadTimingFile() to populate one.
type Timing struct {
	GuardTimeUS     int
	MinPollTimeUS   int
	BlockWaitTimeMS int
	PowerWakeTimeMS int
	MaxRetries      int
}

// DefaultTiming returns the built-in timing defaults: SEGT=10us, MPOT=1ms,
// BWT=1000ms, PWT=5ms, with max_retries derived from BWT/MPOT.
func DefaultTiming() Timing {
	t := Timing{
		GuardTimeUS:     10,
		MinPollTimeUS:   1000,
		BlockWaitTimeMS: 1000,
		PowerWakeTimeMS: 5,
	}
	t.MaxRetries = deriveMaxRetries(t.BlockWaitTimeMS, t.MinPollTimeUS)
	return t
}

func deriveMaxRetries(blockWaitTimeMS, minPollTimeUS int) int {
	return blockWaitTimeMS * 1000 / minPollTimeUS
}

// LoadTimingFile loads an optional ini-format overrides file (section
// [timing], keys guard_time_us, min_poll_time_us, block_wait_time_ms,
// power_wake_time_ms), starting from DefaultTiming and overriding only the
// keys present.
func LoadTimingFile(path string) (Timing, error) {
	t := DefaultTiming()

	cfg, err := ini.Load(path)
	if err != nil {
		return Timing{}, err
	}
	section := cfg.Section("timing")

	if k := section.Key("guard_time_us"); k.String() != "" {
		v, err := k.Int()
		if err != nil {
			return Timing{}, err
		}
		t.GuardTimeUS = v
	}
	if k := section.Key("min_poll_time_us"); k.String() != "" {
		v, err := k.Int()
		if err != nil {
			return Timing{}, err
		}
		t.MinPollTimeUS = v
	}
	if k := section.Key("block_wait_time_ms"); k.String() != "" {
		v, err := k.Int()
		if err != nil {
			return Timing{}, err
		}
		t.BlockWaitTimeMS = v
	}
	if k := section.Key("power_wake_time_ms"); k.String() != "" {
		v, err := k.Int()
		if err != nil {
			return Timing{}, err
		}
		t.PowerWakeTimeMS = v
	}

	t.MaxRetries = deriveMaxRetries(t.BlockWaitTimeMS, t.MinPollTimeUS)
	return t, nil
}
