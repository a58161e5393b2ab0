package worker

import (
	"context"
	"time"
)

// Pacer is consulted between two consecutive sends of a broadcast.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer sleeps Interval between sends. Since sends are sequential, two
// consecutive gateway calls always start at least Interval apart.
type FixedPacer struct {
	Interval time.Duration
}

func (p FixedPacer) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoPacing is for tests and local runs against the mock gateway.
type NoPacing struct{}

func (NoPacing) Wait(ctx context.Context) error { return ctx.Err() }
