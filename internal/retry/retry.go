// Package retry provides the one retry policy every outbound dependency
// shares, parameterized per call site instead of hand-rolled loops.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation with exponential backoff. The zero value is not
// usable; construct with NewPolicy or fill every field.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

func NewPolicy(maxAttempts int, baseDelay time.Duration, multiplier float64) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if multiplier <= 0 {
		multiplier = 2
	}
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, Multiplier: multiplier}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// Backoff sleeps respect ctx cancellation.
func (p Policy) Do(ctx context.Context, op func() error) error {
	delay := p.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
		if lastErr = op(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("exhausted %d attempts: %w", p.MaxAttempts, lastErr)
}
