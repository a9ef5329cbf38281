package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weibocrawl/pkg/apierr"
	"weibocrawl/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errors.New("always fails")
	}, testConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls, "attempt bound is strict")
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.Contains(t, err.Error(), "always fails")
}

func TestDoNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	authErr := apierr.New(apierr.KindAuth, 403, "cookie rejected")
	err := Do(func() error {
		calls++
		return authErr
	}, testConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls, "auth errors should not be retried")
	assert.ErrorIs(t, err, authErr)
}

func TestDoRetryableKinds(t *testing.T) {
	rateErr := apierr.New(apierr.KindRateLimit, 429, "too many requests")

	calls := 0
	err := Do(func() error {
		calls++
		if calls == 1 {
			return rateErr
		}
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoOnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := testConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_ = Do(func() error {
		return errors.New("fail")
	}, cfg)

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(5)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Second}

	err := Do(func() error {
		return errors.New("fail")
	}, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestDoWithResultFailure(t *testing.T) {
	got, err := DoWithResult(func() (string, error) {
		return "", errors.New("fail")
	}, testConfig(2))

	require.Error(t, err)
	assert.Empty(t, got)
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"transport error", apierr.New(apierr.KindTransport, 0, "timeout"), true},
		{"rate limit error", apierr.New(apierr.KindRateLimit, 429, "too many requests"), true},
		{"server error", apierr.New(apierr.KindServer, 500, "internal error"), true},
		{"auth error", apierr.New(apierr.KindAuth, 403, "forbidden"), false},
		{"too long error", apierr.New(apierr.KindTooLong, 414, "uri too long"), false},
		{"schema error", apierr.New(apierr.KindSchema, 200, "bad json"), false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"unknown plain error", errors.New("something"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryIf(tt.err))
		})
	}
}

func TestExponentialBackoffGrowth(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, 100*time.Millisecond, eb.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, eb.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, eb.NextDelay(3))
	assert.Equal(t, time.Second, eb.NextDelay(10), "delay should cap at MaxDelay")
	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 100; i++ {
		d := eb.NextDelay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 5 * time.Second}
	assert.Equal(t, 5*time.Second, cb.NextDelay(1))
	assert.Equal(t, 5*time.Second, cb.NextDelay(7))
	assert.Equal(t, time.Duration(0), cb.NextDelay(0))
}
