package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond, 2)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond, 2)

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond, 2)

	sentinel := errors.New("still down")
	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, sentinel, "last error must stay unwrappable")
	assert.Contains(t, err.Error(), "exhausted 3 attempts")
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	policy := NewPolicy(5, time.Hour, 2) // backoff long enough to never elapse

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation during backoff must stop further attempts")
}

func TestNewPolicy_ClampsDegenerateValues(t *testing.T) {
	policy := NewPolicy(0, time.Millisecond, -1)

	assert.Equal(t, 1, policy.MaxAttempts)
	assert.Equal(t, 2.0, policy.Multiplier)
}
