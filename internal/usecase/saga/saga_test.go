package saga

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"marketplace/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(attempts uint) *Runner {
	return NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)), RetryPolicy{
		Attempts:        attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	})
}

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, actionErr error) Step {
	return Step{
		Name: name,
		Action: func(context.Context) error {
			r.calls = append(r.calls, "do:"+name)

			return actionErr
		},
		Compensate: func(context.Context) error {
			r.calls = append(r.calls, "undo:"+name)

			return nil
		},
	}
}

func TestRun_AllStepsSucceed(t *testing.T) {
	rec := &recorder{}
	err := newTestRunner(3).Run(context.Background(), rec.step("a", nil), rec.step("b", nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"do:a", "do:b"}, rec.calls)
}

func TestRun_CompensatesInReverseOrder(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")

	err := newTestRunner(3).Run(context.Background(),
		rec.step("a", nil),
		rec.step("b", nil),
		rec.step("c", boom),
		rec.step("d", nil),
	)

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"do:a", "do:b", "do:c", "undo:b", "undo:a"}, rec.calls)
}

func TestRun_SkipsStepsWithoutCompensation(t *testing.T) {
	rec := &recorder{}
	plain := Step{Name: "validate", Action: func(context.Context) error {
		rec.calls = append(rec.calls, "do:validate")

		return nil
	}}

	err := newTestRunner(1).Run(context.Background(), plain, rec.step("a", nil), rec.step("b", errors.New("fail")))

	require.Error(t, err)
	assert.Equal(t, []string{"do:validate", "do:a", "do:b", "undo:a"}, rec.calls)
}

func TestRun_RetriesTransientCompensationFailures(t *testing.T) {
	attempts := 0
	step := Step{
		Name:   "flaky",
		Action: func(context.Context) error { return nil },
		Compensate: func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("busy")
			}

			return nil
		},
	}
	boom := errors.New("boom")

	err := newTestRunner(5).Run(context.Background(), step, Step{Name: "fail", Action: func(context.Context) error { return boom }})

	assert.Same(t, boom, err)
	assert.Equal(t, 3, attempts)
}

func TestRun_ExhaustedCompensationDoesNotMaskOriginalError(t *testing.T) {
	var calls []string
	broken := Step{
		Name:   "broken",
		Action: func(context.Context) error { return nil },
		Compensate: func(context.Context) error {
			calls = append(calls, "undo:broken")

			return errors.New("permanently broken")
		},
	}
	first := Step{
		Name:   "first",
		Action: func(context.Context) error { return nil },
		Compensate: func(context.Context) error {
			calls = append(calls, "undo:first")

			return nil
		},
	}
	boom := errors.New("boom")

	err := newTestRunner(2).Run(context.Background(), first, broken, Step{Name: "fail", Action: func(context.Context) error { return boom }})

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"undo:broken", "undo:broken", "undo:first"}, calls)
}

func TestRun_CompensatesAfterCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensatedWithLiveCtx bool

	first := Step{
		Name:   "first",
		Action: func(context.Context) error { return nil },
		Compensate: func(ctx context.Context) error {
			compensatedWithLiveCtx = ctx.Err() == nil

			return nil
		},
	}
	cancelling := Step{Name: "cancelling", Action: func(context.Context) error {
		cancel()

		return context.Canceled
	}}

	err := newTestRunner(3).Run(ctx, first, cancelling)

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, compensatedWithLiveCtx)
}
