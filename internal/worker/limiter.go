package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter implements per-host politeness for page fetching: a
// token-bucket rate limit per host plus a fixed courtesy delay before
// every request, so research fan-out never hammers a single site.
type HostLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
	courtesy     time.Duration
}

// NewHostLimiter creates a limiter. courtesy is the fixed delay applied
// before each acquired request.
func NewHostLimiter(requestsPerSecond float64, burst int, courtesy time.Duration) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
		courtesy:     courtesy,
	}
}

// Acquire blocks until the host's rate limit clears and the courtesy
// delay elapses, or until ctx is done.
func (l *HostLimiter) Acquire(ctx context.Context, rawURL string) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}

	if err := l.limiterFor(host).Wait(ctx); err != nil {
		return err
	}

	if l.courtesy > 0 {
		timer := time.NewTimer(l.courtesy)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// limiterFor returns the host's limiter, creating it on first use.
func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter
	return limiter
}

func hostOf(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
