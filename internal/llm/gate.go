package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateGate enforces a process-wide minimum interval between outbound
// model calls. One gate is created at the composition root and shared
// by reference with every client that issues calls; the token bucket
// serializes concurrent waiters so the k-th caller is released no
// earlier than (k-1) intervals after the first.
type RateGate struct {
	limiter *rate.Limiter
}

// NewRateGate creates a gate with the given minimum inter-call
// interval. A non-positive interval disables gating.
func NewRateGate(minInterval time.Duration) *RateGate {
	if minInterval <= 0 {
		return &RateGate{}
	}
	return &RateGate{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Wait blocks until the caller may issue a call, or until ctx is done.
func (g *RateGate) Wait(ctx context.Context) error {
	if g == nil || g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// Interval reports the configured spacing, zero when gating is off.
func (g *RateGate) Interval() time.Duration {
	if g == nil || g.limiter == nil {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(g.limiter.Limit()))
}
