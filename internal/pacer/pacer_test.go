package pacer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
)

func testOptions() Options {
	return Options{
		BaseDelay:  time.Millisecond,
		MaxRetries: 2,
		Multiplier: 1.5,
		Jitter:     0,
		MaxDelay:   50 * time.Millisecond,
	}
}

func TestController_Do_FirstAttemptSucceeds(t *testing.T) {
	c := New(testOptions())

	var calls int
	err := c.Do(context.Background(), func(context.Context) error {
		calls++

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestController_Do_RetriesUntilSuccess(t *testing.T) {
	c := New(testOptions())

	var calls int
	err := c.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return serrors.With(serrors.ErrTransient, "upstream hiccup")
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestController_Do_ExhaustsRetries(t *testing.T) {
	tests := []struct {
		name string
		kind serrors.Kind
	}{
		{name: "transient", kind: serrors.ErrTransient},
		{name: "timeout", kind: serrors.ErrTimeout},
		{name: "rate limited", kind: serrors.ErrRateLimited},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := New(testOptions())

			var calls int
			err := c.Do(context.Background(), func(context.Context) error {
				calls++

				return serrors.KindOnly(test.kind)
			})

			require.ErrorIs(t, err, test.kind)
			require.Equal(t, 3, calls)
		})
	}
}

func TestController_Do_FailsFastOnPermanentErrors(t *testing.T) {
	c := New(testOptions())

	var calls int
	err := c.Do(context.Background(), func(context.Context) error {
		calls++

		return serrors.With(serrors.ErrPermanent, "address rejected")
	})

	require.ErrorIs(t, err, serrors.ErrPermanent)
	require.Equal(t, 1, calls)
}

func TestController_Do_HonorsRetryAfterAdvisory(t *testing.T) {
	c := New(testOptions())

	advised := 60 * time.Millisecond

	var calls int
	start := time.Now()
	err := c.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return serrors.Wrap(serrors.ErrRateLimited, &checker.RetryAfterError{After: advised}, "throttled")
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, calls)
	// MaxDelay caps the 60ms advisory at 50ms; the wait must still dwarf the
	// 1ms base interval.
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestController_Do_CancelDuringBackoff(t *testing.T) {
	opts := testOptions()
	opts.BaseDelay = time.Minute
	c := New(opts)

	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	done := make(chan error, 1)
	go func() {
		done <- c.Do(ctx, func(context.Context) error {
			calls++
			cancel()

			return serrors.KindOnly(serrors.ErrTransient)
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	require.Equal(t, 1, calls)
}

func TestController_Do_CancelledBeforeFirstAttempt(t *testing.T) {
	c := New(testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	err := c.Do(ctx, func(context.Context) error {
		calls++

		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, calls)
}

func TestController_Do_SpacesConsecutiveCalls(t *testing.T) {
	opts := testOptions()
	opts.BaseDelay = 40 * time.Millisecond
	c := New(opts)

	ok := func(context.Context) error { return nil }

	require.NoError(t, c.Do(context.Background(), ok))

	start := time.Now()
	require.NoError(t, c.Do(context.Background(), ok))
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestController_Do_UnkindedErrorIsNotRetried(t *testing.T) {
	c := New(testOptions())

	var calls int
	err := c.Do(context.Background(), func(context.Context) error {
		calls++

		return errors.New("plain failure")
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}
