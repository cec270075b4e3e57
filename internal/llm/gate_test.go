package llm

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateGate_SerializesConcurrentCallers(t *testing.T) {
	interval := 40 * time.Millisecond
	gate := NewRateGate(interval)

	const callers = 4
	start := time.Now()

	var mu sync.Mutex
	var releases []time.Duration

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Wait(context.Background()); err != nil {
				t.Errorf("wait failed: %v", err)
				return
			}
			mu.Lock()
			releases = append(releases, time.Since(start))
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(releases) != callers {
		t.Fatalf("expected %d releases, got %d", callers, len(releases))
	}

	// The k-th caller (1-indexed, by release order) must not be
	// released before (k-1) intervals have elapsed, regardless of
	// goroutine interleaving. Small tolerance for timer slop.
	sortDurations(releases)
	for k, elapsed := range releases {
		minElapsed := time.Duration(k)*interval - 5*time.Millisecond
		if elapsed < minElapsed {
			t.Errorf("caller %d released at %v, want >= %v", k+1, elapsed, minElapsed)
		}
	}
}

func TestRateGate_FirstCallImmediate(t *testing.T) {
	gate := NewRateGate(time.Second)

	start := time.Now()
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first call waited %v, expected immediate release", elapsed)
	}
}

func TestRateGate_ContextCancellation(t *testing.T) {
	gate := NewRateGate(time.Hour)

	// Consume the initial token.
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := gate.Wait(ctx); err == nil {
		t.Error("expected error when context expires before the next slot")
	}
}

func TestRateGate_Disabled(t *testing.T) {
	gate := NewRateGate(0)

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := gate.Wait(context.Background()); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("disabled gate should not block, took %v", elapsed)
	}
}

func sortDurations(ds []time.Duration) {
	for i := 1; i < len(ds); i++ {
		for j := i; j > 0 && ds[j] < ds[j-1]; j-- {
			ds[j], ds[j-1] = ds[j-1], ds[j]
		}
	}
}
