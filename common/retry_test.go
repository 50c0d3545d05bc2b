package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type statusCodeError int

func (e statusCodeError) Error() string {
	return fmt.Sprintf("status code %d", int(e))
}

func (e statusCodeError) IsRetryable() bool {
	return e >= 500 || e == 429
}

func TestExecuteWithRetry(t *testing.T) {
	t.Parallel()

	var (
		errWait = errors.New("hello wait")
		ctx     = context.Background()
	)

	options := []RetryConfigOption{
		WithRetryCount(10),
		WithRetryWaitTime(time.Millisecond * 5),
	}

	_, err := ExecuteWithRetry(ctx, func(_ context.Context) (int, error) {
		return 0, errWait
	}, options...)

	require.ErrorIs(t, err, errWait)

	_, err = ExecuteWithRetry(ctx, func(_ context.Context) (int, error) {
		return 0, fmt.Errorf("request failed: %w", statusCodeError(400))
	}, options...)

	require.ErrorIs(t, err, statusCodeError(400))

	i := 0

	_, err = ExecuteWithRetry(ctx, func(_ context.Context) (int, error) {
		i++
		if i&1 == 1 {
			return 0, &net.DNSError{}
		} else if i&3 == 0 {
			return 0, ErrRetryTryAgain
		}

		return 0, fmt.Errorf("request failed: %w", statusCodeError(503))
	}, options...)

	require.ErrorIs(t, err, ErrRetryTimeout)
	require.ErrorIs(t, err, statusCodeError(503))
	require.Equal(t, 10, i)

	ctxWithCancel, cncl := context.WithCancel(ctx)
	go cncl()

	_, err = ExecuteWithRetry(ctxWithCancel, func(_ context.Context) (int, error) {
		return 0, statusCodeError(500)
	}, options...)

	require.ErrorIs(t, err, ctxWithCancel.Err())

	result, err := ExecuteWithRetry(ctx, func(cnt context.Context) (int, error) {
		return 8930, nil
	}, options...)

	require.NoError(t, err)
	require.Equal(t, 8930, result)

	calls := 0

	result, err = ExecuteWithRetry(ctx, func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, ErrRetryTryAgain
		}

		return calls, nil
	}, append(options, WithIsRetryableError(func(err error) bool {
		return errors.Is(err, ErrRetryTryAgain)
	}))...)

	require.NoError(t, err)
	require.Equal(t, 3, result)
}

func TestExecuteWithRetry_Backoff(t *testing.T) {
	t.Parallel()

	var (
		attempts []int
		calls    []time.Time
	)

	_, err := ExecuteWithRetry(context.Background(), func(_ context.Context) (string, error) {
		calls = append(calls, time.Now())

		return "", ErrRetryTryAgain
	},
		WithRetryCount(4),
		WithRetryWaitTime(time.Millisecond*10),
		WithBackoff(2, time.Millisecond*25),
		WithOnRetry(func(attempt int, err error) {
			require.ErrorIs(t, err, ErrRetryTryAgain)

			attempts = append(attempts, attempt)
		}),
	)

	require.ErrorIs(t, err, ErrRetryTimeout)
	require.Equal(t, []int{1, 2, 3}, attempts)
	require.Len(t, calls, 4)

	// waits are 10ms, 20ms and 25ms
	require.GreaterOrEqual(t, calls[3].Sub(calls[0]), time.Millisecond*55)
}

func TestNextWaitTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		current  time.Duration
		factor   float64
		limit    time.Duration
		expected time.Duration
	}{
		{"constant", time.Second, 1, 0, time.Second},
		{"invalid factor", time.Second, 0.5, 0, time.Second},
		{"doubled", time.Second, 2, 0, time.Second * 2},
		{"capped", time.Second * 20, 2, time.Second * 30, time.Second * 30},
		{"below cap", time.Second * 10, 1.5, time.Second * 30, time.Second * 15},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, c.expected, nextWaitTime(c.current, c.factor, c.limit))
		})
	}
}
