// Package retry adds adaptive exponential backoff around catalog lookups,
// so a transient SQLITE_BUSY or a flaky remote catalog doesn't fail a whole
// calculation request.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// Backoff configures an exponential retry loop. Sleep is injectable so
// tests can run the loop without a real delay, mirroring the
// teacher's Reaper.Now convention for testable time-dependent logic.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Sleep       func(time.Duration) // defaults to time.Sleep
}

// DefaultBackoff returns the package's standard retry policy: 3 attempts,
// starting at 50ms and doubling up to 1s.
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 1 * time.Second}
}

// Do runs fn, retrying with exponential backoff on error until MaxAttempts
// is reached or ctx is cancelled.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	maxAttempts := b.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	sleep := b.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := b.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		sleep(delay)
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return fmt.Errorf("retry: exhausted %d attempts: %w", maxAttempts, lastErr)
}

// WrapQuery wraps a thermo.CatalogQuery with Backoff, so every formula
// lookup the core drives gets the same retry policy without the core ever
// importing this package.
func WrapQuery(query thermo.CatalogQuery, b Backoff) thermo.CatalogQuery {
	return func(formula string) ([]thermo.CatalogRow, error) {
		var rows []thermo.CatalogRow
		err := b.Do(context.Background(), func() error {
			r, err := query(formula)
			if err != nil {
				return err
			}
			rows = r
			return nil
		})
		return rows, err
	}
}
