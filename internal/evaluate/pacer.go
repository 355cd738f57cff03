package evaluate

import (
	"context"
	"time"
)

// Pacer decides how long to wait between two consecutive provider calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer waits a fixed interval. A non-positive interval disables pacing.
type IntervalPacer struct {
	Interval time.Duration
}

// Wait blocks for the interval or until ctx is done.
func (p IntervalPacer) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return nil
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoPacing never waits.
var NoPacing Pacer = IntervalPacer{}
