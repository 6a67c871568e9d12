// Package clock provides context-aware timing helpers.
package clock

import (
	"context"
	"time"
)

// SleepWithContext blocks for d or until ctx ends, whichever comes first. It
// returns ctx.Err() when the context cut the sleep short.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
