package contentunderstanding

import (
	"context"
	"time"
)

// SystemClock is the wall clock. time.Now carries a monotonic reading, so
// elapsed-time math is immune to clock adjustments.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
