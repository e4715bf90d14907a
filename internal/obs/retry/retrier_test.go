package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastPolicy(attempts int) Policy {
	return Policy{Name: "test", Attempts: attempts, Backoff: ExpoJitter{Base: time.Millisecond, Max: 2 * time.Millisecond}}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	}, fastPolicy(5))
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	calls := 0
	exhausted := false
	p := fastPolicy(5)
	p.Retryable = func(err error) bool { return !errors.Is(err, errBoom) }
	p.OnExhaust = func(error) { exhausted = true }

	err := Do(context.Background(), func() error { calls++; return errBoom }, p)
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 1, calls)
	require.True(t, exhausted)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), func() error { calls++; return errBoom }, fastPolicy(3))
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 3, calls)
}

func TestDo_HonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Attempts: 10, Backoff: ExpoJitter{Base: time.Hour}}
	calls := 0
	err := Do(ctx, func() error {
		calls++
		cancel()
		return errBoom
	}, p)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestExpoJitter_Caps(t *testing.T) {
	t.Parallel()

	b := ExpoJitter{Base: time.Second, Max: 4 * time.Second}
	require.Equal(t, time.Second, b.Next(0))
	require.Equal(t, 2*time.Second, b.Next(1))
	require.Equal(t, 4*time.Second, b.Next(5))
}
