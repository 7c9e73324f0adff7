package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestLinear_SucceedsFirstAttempt(t *testing.T) {
	sleeps := &recordedSleeps{}
	calls := 0

	err := Linear(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, WithSleep(sleeps.sleep))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps.delays)
}

func TestLinear_SucceedsAfterFailures(t *testing.T) {
	sleeps := &recordedSleeps{}
	calls := 0

	err := Linear(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, WithSleep(sleeps.sleep), WithStep(20*time.Second))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{20 * time.Second, 40 * time.Second}, sleeps.delays)
}

func TestLinear_Exhausted(t *testing.T) {
	sleeps := &recordedSleeps{}
	calls := 0
	cause := errors.New("still down")

	err := Linear(context.Background(), func(ctx context.Context) error {
		calls++
		return cause
	}, WithSleep(sleeps.sleep))

	require.Error(t, err)
	assert.Equal(t, 10, calls)
	assert.ErrorIs(t, err, cause)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 10, exhausted.Attempts)

	require.Len(t, sleeps.delays, 10)
	for i, d := range sleeps.delays {
		assert.Equal(t, time.Duration(i+1)*20*time.Second, d)
	}
	assert.Equal(t, 200*time.Second, sleeps.delays[9])
}

func TestLinear_OnFailure(t *testing.T) {
	var attempts []int
	err := Linear(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	},
		WithMaxAttempts(3),
		WithStep(time.Millisecond),
		WithSleep(func(ctx context.Context, d time.Duration) error { return nil }),
		WithOnFailure(func(attempt int, delay time.Duration, err error) {
			attempts = append(attempts, attempt)
			assert.Equal(t, time.Duration(attempt)*time.Millisecond, delay)
		}),
	)

	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestLinear_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Linear(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	}, WithSleep(SleepContext))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLinear_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Linear(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, WithMaxAttempts(0))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}

func TestDelay(t *testing.T) {
	assert.Equal(t, 20*time.Second, Delay(1, 20*time.Second))
	assert.Equal(t, 200*time.Second, Delay(10, 20*time.Second))
}
