// Package pacer spaces requests to a single upstream endpoint and retries
// failed attempts with exponential backoff. Each endpoint gets its own
// Controller so that delays on one never stall the other.
package pacer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/config"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
)

// Options configure request spacing and the retry policy for one endpoint.
// These settings are typically derived from application configuration.
type Options struct {
	// BaseDelay is the minimum spacing between requests, and the starting
	// backoff interval after a failure.
	BaseDelay time.Duration
	// MaxRetries is how many times a retryable failure is reattempted. The
	// total attempt count per call is MaxRetries+1.
	MaxRetries int
	// Multiplier grows the backoff interval after each failed attempt.
	Multiplier float64
	// Jitter is the randomization factor applied to each backoff interval.
	Jitter float64
	// MaxDelay caps a single backoff wait, including server-advised ones.
	// Zero means no cap.
	MaxDelay time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		BaseDelay:  cfg.Pacing.BaseDelay,
		MaxRetries: cfg.Pacing.MaxRetries,
		Multiplier: cfg.Pacing.Multiplier,
		Jitter:     cfg.Pacing.Jitter,
		MaxDelay:   cfg.Pacing.MaxDelay,
	}
}

// phase is the state of a single Do call. A call starts in phaseAttempting
// and bounces between phaseAttempting and phaseBackoff until the function
// succeeds, the context is cancelled, or the call moves to phaseGivenUp.
type phase int

const (
	phaseAttempting phase = iota
	phaseBackoff
	phaseGivenUp
)

// Controller paces calls against one upstream endpoint. The rate limiter is
// shared across Do calls, so the base delay applies between consecutive
// requests even when they belong to different addresses.
type Controller struct {
	// options holds the spacing and retry policy.
	options Options
	// limiter enforces the minimum spacing between requests.
	limiter *rate.Limiter
}

// New creates a Controller for a single endpoint with the given options.
func New(options Options) *Controller {
	return &Controller{
		options: options,
		limiter: rate.NewLimiter(rate.Every(options.BaseDelay), 1),
	}
}

// Do runs fn, retrying failures whose kind marks them as worth another try
// (transient upstream trouble, timeouts, and rate limiting). Permanent
// failures are returned immediately. Between attempts Do waits for the
// computed backoff interval, stretched to a server-provided retry-after
// advisory when that is longer. Cancelling ctx aborts before the next
// attempt and during backoff waits; fn is never interrupted mid-flight.
func (c *Controller) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	bo := c.newBackOff()

	var (
		lastErr error
		attempt int
		delay   time.Duration
	)

	for state := phaseAttempting; ; {
		switch state {
		case phaseAttempting:
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}

			attempt++
			lastErr = fn(ctx)
			if lastErr == nil {
				return nil
			}
			if !retryable(lastErr) || attempt > c.options.MaxRetries {
				state = phaseGivenUp

				continue
			}

			delay = c.nextDelay(bo, lastErr)
			state = phaseBackoff

		case phaseBackoff:
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()

				return ctx.Err()
			case <-timer.C:
			}

			state = phaseAttempting

		case phaseGivenUp:
			return lastErr
		}
	}
}

// nextDelay computes the wait before the next attempt. A server-provided
// retry-after advisory replaces a shorter computed interval; MaxDelay caps
// the result either way.
func (c *Controller) nextDelay(bo *backoff.ExponentialBackOff, err error) time.Duration {
	delay := bo.NextBackOff()
	if delay == backoff.Stop {
		delay = c.options.BaseDelay
	}

	if after, ok := checker.RetryAfter(err); ok && after > delay {
		delay = after
	}
	if c.options.MaxDelay > 0 && delay > c.options.MaxDelay {
		delay = c.options.MaxDelay
	}

	return delay
}

// newBackOff builds a fresh interval generator so that backoff growth from
// one Do call never leaks into the next.
func (c *Controller) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.options.BaseDelay
	bo.RandomizationFactor = c.options.Jitter
	bo.Multiplier = c.options.Multiplier
	if c.options.MaxDelay > 0 {
		bo.MaxInterval = c.options.MaxDelay
	}
	bo.MaxElapsedTime = 0
	bo.Reset()

	return bo
}

// retryable reports whether another attempt could plausibly succeed.
func retryable(err error) bool {
	return errors.Is(err, serrors.ErrTransient) ||
		errors.Is(err, serrors.ErrTimeout) ||
		errors.Is(err, serrors.ErrRateLimited)
}
