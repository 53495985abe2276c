package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(2, time.Minute, 1)

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker must allow: %v", err)
	}
	b.RecordFailure()
	if b.State() != StateClosed {
		t.Fatalf("one failure below threshold must stay closed, got %s", b.State())
	}
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("breaker must open at threshold, got %s", b.State())
	}
	if err := b.Allow(); err == nil {
		t.Fatal("open breaker must reject")
	}
}

func TestCircuitBreaker_HalfOpenProbeAndRecovery(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Minute, 1)
	b.RecordFailure()

	// Force the open timeout to elapse.
	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if err := b.Allow(); err != nil {
		t.Fatalf("half-open breaker must allow one probe: %v", err)
	}
	if err := b.Allow(); err == nil {
		t.Fatal("half-open breaker must reject past the probe budget")
	}

	b.RecordSuccess()
	if b.State() != StateClosed {
		t.Fatalf("successful probe must close breaker, got %s", b.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Minute, 1)
	b.RecordFailure()
	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if err := b.Allow(); err != nil {
		t.Fatalf("probe must be allowed: %v", err)
	}
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("failed probe must reopen breaker, got %s", b.State())
	}
}
