// Package saga runs an ordered list of side-effecting steps and unwinds the
// completed ones in reverse order when a later step fails.
package saga

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "marketplace/internal/delivery/context"

	"github.com/cenkalti/backoff/v5"
)

// Step is a single forward action with an optional compensating action.
type Step struct {
	Name string

	// Action performs the step. A returned error aborts the saga.
	Action func(ctx context.Context) error

	// Compensate undoes a completed Action. Nil means the step has nothing to undo.
	Compensate func(ctx context.Context) error
}

// RetryPolicy bounds how hard a compensation is retried.
type RetryPolicy struct {
	Attempts        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Runner executes sagas.
type Runner struct {
	logger *slog.Logger
	policy RetryPolicy
}

// NewRunner creates a Runner that retries compensations according to policy.
func NewRunner(logger *slog.Logger, policy RetryPolicy) *Runner {
	if policy.Attempts == 0 {
		policy.Attempts = 1
	}

	return &Runner{logger: logger, policy: policy}
}

// Run executes steps in order. When a step fails, every completed step is compensated
// in reverse order and the failing step's error is returned unchanged.
func (r *Runner) Run(ctx context.Context, steps ...Step) error {
	completed := make([]Step, 0, len(steps))

	for _, step := range steps {
		if err := step.Action(ctx); err != nil {
			r.log(ctx).Warn("Saga step failed, compensating",
				slog.String("step", step.Name),
				slog.Int("completed_steps", len(completed)),
				slog.Any("error", err),
			)
			r.compensate(ctx, completed)

			return err
		}
		completed = append(completed, step)
	}

	return nil
}

// compensate undoes completed steps newest first. The caller's cancellation does not
// stop the unwind, and an exhausted compensation is logged and skipped.
func (r *Runner) compensate(ctx context.Context, completed []Step) {
	cleanupCtx := context.WithoutCancel(ctx)

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}

		if err := r.retry(cleanupCtx, step); err != nil {
			r.log(ctx).Error("Saga compensation exhausted",
				slog.String("step", step.Name),
				slog.Uint64("attempts", uint64(r.policy.Attempts)),
				slog.Any("error", err),
			)

			continue
		}

		r.log(ctx).Info("Saga step compensated", slog.String("step", step.Name))
	}
}

func (r *Runner) retry(ctx context.Context, step Step) error {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, step.Compensate(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.policy.Attempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.log(ctx).Warn("Saga compensation failed, retrying",
				slog.String("step", step.Name),
				slog.Duration("retry_in", next),
				slog.Any("error", err),
			)
		}),
	)

	return err
}

func (r *Runner) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, r.logger)
}
