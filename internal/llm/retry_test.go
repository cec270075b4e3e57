package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryPolicy_Success(t *testing.T) {
	policy := NewRetryPolicy(5, 10*time.Millisecond, 2*time.Millisecond, nil)

	out, err := policy.Do(context.Background(), func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if out != "ok" {
		t.Errorf("expected ok, got %q", out)
	}
}

func TestRetryPolicy_BackoffSequence(t *testing.T) {
	policy := NewRetryPolicy(5, 10*time.Second, 2*time.Second, nil)

	var waits []time.Duration
	policy.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	policy.randF = func() float64 { return 0.5 }

	calls := 0
	_, err := policy.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("429 resource exhausted")
	})

	if !errors.Is(err, ErrSaturated) {
		t.Fatalf("expected ErrSaturated, got %v", err)
	}
	if calls != 6 {
		t.Errorf("expected 6 calls (1 initial + 5 retries), got %d", calls)
	}
	if len(waits) != 5 {
		t.Fatalf("expected 5 backoff waits, got %d", len(waits))
	}

	// Each wait is base * 2^n plus jitter in [0, 2s); with rand fixed
	// at 0.5 the jitter is exactly 1s. Sequence must be non-decreasing.
	base := 10 * time.Second
	jitter := time.Second
	for n, wait := range waits {
		want := base*(1<<n) + jitter
		if wait != want {
			t.Errorf("wait %d: got %v, want %v", n, wait, want)
		}
		if n > 0 && wait < waits[n-1] {
			t.Errorf("wait %d (%v) decreased from %v", n, wait, waits[n-1])
		}
	}
}

func TestRetryPolicy_JitterBounds(t *testing.T) {
	for _, r := range []float64{0.0, 0.25, 0.999} {
		policy := NewRetryPolicy(1, 10*time.Second, 2*time.Second, nil)

		var waits []time.Duration
		policy.sleep = func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}
		policy.randF = func() float64 { return r }

		_, _ = policy.Do(context.Background(), func(ctx context.Context) (string, error) {
			return "", errors.New("quota exceeded")
		})

		if len(waits) != 1 {
			t.Fatalf("rand=%v: expected 1 wait, got %d", r, len(waits))
		}
		low, high := 10*time.Second, 12*time.Second
		if waits[0] < low || waits[0] >= high {
			t.Errorf("rand=%v: wait %v outside [%v, %v)", r, waits[0], low, high)
		}
	}
}

func TestRetryPolicy_NonRetryablePropagatesImmediately(t *testing.T) {
	policy := NewRetryPolicy(5, 10*time.Second, 2*time.Second, nil)
	policy.sleep = func(ctx context.Context, d time.Duration) error {
		t.Error("sleep should not be called for non-retryable errors")
		return nil
	}

	apiErr := errors.New("invalid request: bad prompt")
	calls := 0
	_, err := policy.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", apiErr
	})

	if !errors.Is(err, apiErr) {
		t.Errorf("expected original error, got %v", err)
	}
	if errors.Is(err, ErrSaturated) {
		t.Error("non-retryable failure must not be reported as saturation")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryPolicy_RecoversAfterTransientQuotaError(t *testing.T) {
	policy := NewRetryPolicy(5, 10*time.Second, 0, nil)
	policy.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	policy.randF = func() float64 { return 0 }

	calls := 0
	out, err := policy.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("error 429: quota")
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if out != "recovered" || calls != 3 {
		t.Errorf("expected recovery on call 3, got %q after %d calls", out, calls)
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("HTTP 429 Too Many Requests"), true},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("Quota exceeded for requests"), true},
		{errors.New("connection refused"), false},
		{errors.New("invalid API key"), false},
	}
	for _, tt := range tests {
		if got := IsQuotaError(tt.err); got != tt.want {
			t.Errorf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
