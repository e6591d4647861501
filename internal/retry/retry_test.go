package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

func noSleep(time.Duration) {}

func TestDoSucceedsOnFirstAttempt(t *testing.T) {
	b := Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep}
	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call on immediate success, got %d", calls)
	}
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	b := Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep}
	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttemptsAndWrapsLastError(t *testing.T) {
	sentinel := errors.New("persistent failure")
	b := Backoff{MaxAttempts: 2, BaseDelay: time.Millisecond, Sleep: noSleep}
	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the wrapped error to satisfy errors.Is against the sentinel, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly MaxAttempts (2) calls, got %d", calls)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := Backoff{MaxAttempts: 5, BaseDelay: time.Millisecond, Sleep: noSleep}
	calls := 0
	err := b.Do(ctx, func() error {
		calls++
		return nil
	})
	if err == nil {
		t.Fatal("expected an error for a pre-cancelled context")
	}
	if calls != 0 {
		t.Fatalf("expected fn to never run against a pre-cancelled context, got %d calls", calls)
	}
}

func TestDoCapsDelayAtMaxDelay(t *testing.T) {
	var delays []time.Duration
	b := Backoff{
		MaxAttempts: 4,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    15 * time.Millisecond,
		Sleep:       func(d time.Duration) { delays = append(delays, d) },
	}
	_ = b.Do(context.Background(), func() error { return errors.New("fail") })
	for _, d := range delays {
		if d > b.MaxDelay {
			t.Fatalf("expected every sleep to be capped at %v, got %v", b.MaxDelay, d)
		}
	}
}

func TestWrapQueryRetriesUnderlyingQuery(t *testing.T) {
	calls := 0
	query := thermo.CatalogQuery(func(formula string) ([]thermo.CatalogRow, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("busy")
		}
		return []thermo.CatalogRow{{Formula_: formula}}, nil
	})

	wrapped := WrapQuery(query, Backoff{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep})
	rows, err := wrapped("H2O")
	if err != nil {
		t.Fatalf("wrapped query: %v", err)
	}
	if len(rows) != 1 || rows[0].Formula() != "H2O" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if calls != 2 {
		t.Fatalf("expected the query to be retried once, got %d calls", calls)
	}
}

func TestDefaultBackoffShape(t *testing.T) {
	b := DefaultBackoff()
	if b.MaxAttempts != 3 {
		t.Errorf("expected 3 max attempts, got %d", b.MaxAttempts)
	}
	if b.BaseDelay != 50*time.Millisecond {
		t.Errorf("expected a 50ms base delay, got %v", b.BaseDelay)
	}
	if b.MaxDelay != time.Second {
		t.Errorf("expected a 1s max delay, got %v", b.MaxDelay)
	}
}
