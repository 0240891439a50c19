package util

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 3, 30*time.Second, zap.NewNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	cb.RecordFailure()
	if !cb.CanExecute() {
		t.Fatalf("expected circuit to stay closed below threshold")
	}

	cb.RecordFailure()
	if cb.CanExecute() {
		t.Fatalf("expected circuit to open at threshold")
	}
	if status := cb.GetStatus(); status.NextRetryTime == nil {
		t.Fatalf("expected next retry time while open")
	}

	now = now.Add(31 * time.Second)
	if got := cb.State(); got != CircuitStateHalfOpen {
		t.Fatalf("expected HALF_OPEN after reset timeout, got %s", got)
	}

	cb.RecordSuccess()
	if got := cb.State(); got != CircuitStateClosed {
		t.Fatalf("expected CLOSED after successful probe, got %s", got)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 1, time.Second, zap.NewNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Second)
	if got := cb.State(); got != CircuitStateHalfOpen {
		t.Fatalf("expected HALF_OPEN, got %s", got)
	}

	cb.RecordFailure()
	if got := cb.State(); got != CircuitStateOpen {
		t.Fatalf("expected OPEN after failed probe, got %s", got)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Second, nil)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()

	if !cb.CanExecute() {
		t.Fatalf("expected success to reset the consecutive failure count")
	}
}

func TestCircuitBreakerHalfOpenAdmitsSingleProbe(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 1, time.Second, zap.NewNop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Second)

	if !cb.CanExecute() {
		t.Fatalf("expected the first caller after the reset timeout to be admitted")
	}
	if cb.CanExecute() {
		t.Fatalf("expected a second caller to wait while the probe is in flight")
	}

	cb.Release()
	if !cb.CanExecute() {
		t.Fatalf("expected a released probe slot to admit the next caller")
	}

	cb.RecordSuccess()
	if !cb.CanExecute() || !cb.CanExecute() {
		t.Fatalf("expected a closed circuit to admit every caller")
	}
}
