package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ErrSaturated signals that the retry budget for quota errors is
// exhausted and the model API is considered unavailable. Distinct from
// the backend's own errors so callers can tell "API saturated" apart
// from "request failed".
var ErrSaturated = errors.New("model API saturated: retry budget exhausted")

// IsQuotaError reports whether an error message indicates a quota or
// rate-limit condition.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource") ||
		strings.Contains(msg, "quota")
}

// RetryPolicy wraps a fallible call with exponential backoff on
// retryable errors. Delays follow base * 2^n plus random jitter in
// [0, JitterMax) to avoid synchronized retries across tasks.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	JitterMax  time.Duration
	Retryable  func(error) bool

	// Test hooks. Nil means real sleep and math/rand.
	sleep func(ctx context.Context, d time.Duration) error
	randF func() float64
}

// NewRetryPolicy builds a policy; a nil retryable predicate defaults to
// IsQuotaError.
func NewRetryPolicy(maxRetries int, base, jitterMax time.Duration, retryable func(error) bool) RetryPolicy {
	if retryable == nil {
		retryable = IsQuotaError
	}
	return RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  base,
		JitterMax:  jitterMax,
		Retryable:  retryable,
	}
}

// Do runs op, retrying on retryable errors with exponential backoff.
// Non-retryable errors propagate immediately. After MaxRetries failed
// retries the next failure returns ErrSaturated wrapping the last
// backend error.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) (string, error)) (string, error) {
	sleepFn := p.sleep
	if sleepFn == nil {
		sleepFn = sleepCtx
	}
	randFn := p.randF
	if randFn == nil {
		randFn = rand.Float64
	}

	delay := p.BaseDelay
	for attempt := 0; ; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if !p.Retryable(err) {
			return "", err
		}
		if attempt >= p.MaxRetries {
			return "", fmt.Errorf("%w (last error: %v)", ErrSaturated, err)
		}

		jitter := time.Duration(randFn() * float64(p.JitterMax))
		if sleepErr := sleepFn(ctx, delay+jitter); sleepErr != nil {
			return "", sleepErr
		}
		delay *= 2
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
