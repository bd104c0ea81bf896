package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RetryChecker repeats Inner until it succeeds or Attempts are spent.
// It waits Interval after a response that was not a success and
// ErrorInterval after a transport error (StatusCode 0). There is no wait
// after the final attempt.
type RetryChecker struct {
	Inner         Checker
	Attempts      int
	Interval      time.Duration
	ErrorInterval time.Duration
	Logger        *zap.Logger
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		last CheckResult
		errs error
	)
	for i := 1; i <= attempts; i++ {
		last = r.Inner.Check(ctx, target)
		last.Attempts = i

		log.Info("health_attempt",
			zap.Int("attempt", i),
			zap.Int("max_attempts", attempts),
			zap.Int("status", last.StatusCode),
			zap.Bool("ok", last.Success),
			zap.String("message", last.Message),
			zap.Float64("latency_ms", last.LatencyMS),
		)
		if last.Success {
			return last
		}
		errs = multierr.Append(errs, fmt.Errorf("attempt %d: %w", i, attemptErr(last)))

		if i == attempts {
			break
		}
		wait := r.Interval
		if last.StatusCode == 0 {
			wait = r.ErrorInterval
		}
		if err := sleepCtx(ctx, wait); err != nil {
			errs = multierr.Append(errs, err)
			break
		}
	}

	last.Err = errs
	last.Message = last.Message + " (after retries)"
	return last
}

func attemptErr(r CheckResult) error {
	if r.Err != nil {
		return r.Err
	}
	return errors.New(r.Message)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
