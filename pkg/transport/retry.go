package transport

import (
	"errors"
	"log/slog"
	"time"
)

// Guarded wraps an I2C handle with the guard-time-before-every-transaction
// and NACK-retry behavior every transaction needs: a thin wrapper that owns
// logging and retry policy around a raw collaborator.
type Guarded struct {
	I2C
	logger      *slog.Logger
	guardTime   time.Duration
	maxAttempts int
}

// NewGuarded wraps dev so every Read/Write is preceded by guardTime and
// retried up to maxAttempts times on ErrNotReady before failing with
// ErrTimeout.
func NewGuarded(dev I2C, guardTime time.Duration, maxAttempts int) *Guarded {
	return &Guarded{
		I2C:         dev,
		logger:      slog.Default(),
		guardTime:   guardTime,
		maxAttempts: maxAttempts,
	}
}

// SetLogger overrides the default logger.
func (g *Guarded) SetLogger(logger *slog.Logger) {
	g.logger = logger
}

// ErrTimeout is returned once NACK-retry is exhausted.
var ErrTimeout = errors.New("transport: NACK retry exhausted")

func (g *Guarded) Read(buf []byte) (int, error) {
	return g.withRetry("read", func() (int, error) {
		return g.I2C.Read(buf)
	})
}

func (g *Guarded) Write(buf []byte) (int, error) {
	return g.withRetry("write", func() (int, error) {
		return g.I2C.Write(buf)
	})
}

func (g *Guarded) withRetry(op string, do func() (int, error)) (int, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		time.Sleep(g.guardTime)
		n, err := do()
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ErrNotReady) {
			// Hard error, not a NACK: don't retry.
			return n, err
		}
		lastErr = err
		g.logger.Debug("i2c transaction nacked, retrying", "op", op, "attempt", attempt+1)
	}
	g.logger.Warn("i2c transaction timed out", "op", op, "attempts", g.maxAttempts)
	return 0, errorsJoinTimeout(lastErr)
}

func errorsJoinTimeout(cause error) error {
	if cause == nil {
		return ErrTimeout
	}
	return errors.Join(ErrTimeout, cause)
}
