package generation

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a single model is attempted. It is a plain
// value consumed by the family driver so policies stay unit-testable
// independent of network calls.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries per model, including the
	// first. The driver never exceeds two regardless of this value: a model
	// is retried at most once.
	MaxAttempts int

	// Delay is the fixed wait before retrying the same model after a
	// transient failure.
	Delay time.Duration
}

// Default policy values. The retry delay and fallback delay are distinct on
// purpose: retrying the same model waits out a quota window, while switching
// families only needs a short breather.
const (
	DefaultRetryDelay    = 5 * time.Second
	DefaultFallbackDelay = 3 * time.Second
	DefaultInvokeTimeout = 60 * time.Second
)

// DefaultRetryPolicy retries each model once after a transient failure.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Delay: DefaultRetryDelay}
}

// sleepFunc waits for the given duration or until the context is done.
// Injectable so driver tests run without real delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
