// Package retry polls an operation with a linearly growing delay.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxAttempts int
	Step        time.Duration
	// OnFailure is called after each failed attempt, before sleeping.
	OnFailure func(attempt int, delay time.Duration, err error)
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// WithMaxAttempts sets the number of times the operation is tried.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithStep sets the delay unit; attempt n is followed by a wait of n*step.
func WithStep(d time.Duration) Option {
	return func(c *Config) {
		c.Step = d
	}
}

// WithOnFailure registers a hook invoked after each failed attempt.
func WithOnFailure(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(c *Config) {
		c.OnFailure = fn
	}
}

// WithSleep replaces the sleep function.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Config) {
		c.Sleep = fn
	}
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Delay returns the wait that follows the given 1-based attempt.
func Delay(attempt int, step time.Duration) time.Duration {
	return time.Duration(attempt) * step
}

// Linear runs operation up to MaxAttempts times. After failed attempt n it
// waits n*Step, including after the final attempt, so the last wait is
// MaxAttempts*Step. Context cancellation stops the loop immediately.
func Linear(ctx context.Context, operation func(ctx context.Context) error, opts ...Option) error {
	cfg := &Config{
		MaxAttempts: 10,
		Step:        20 * time.Second,
		Sleep:       SleepContext,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt-1, err)
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		delay := Delay(attempt, cfg.Step)
		if cfg.OnFailure != nil {
			cfg.OnFailure(attempt, delay, err)
		}

		if err := cfg.Sleep(ctx, delay); err != nil {
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, err)
		}
	}

	return &ExhaustedError{Attempts: cfg.MaxAttempts, Err: lastErr}
}

// SleepContext waits for d or returns ctx.Err() if ctx is done first.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
