package sagas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSagaCompletes(t *testing.T) {
	var order []string

	saga := New("happy-path", zap.NewNop()).
		AddStep(Step{Name: "first", Run: func(ctx context.Context) error {
			order = append(order, "first")
			return nil
		}}).
		AddStep(Step{Name: "second", Run: func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		}})

	require.NoError(t, saga.Execute(context.Background()))
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, StateCompleted, saga.State())
}

func TestSagaCompensatesInReverseOrder(t *testing.T) {
	var compensated []string

	saga := New("rollback", zap.NewNop()).
		AddStep(Step{
			Name: "first",
			Run:  func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensated = append(compensated, "first")
				return nil
			},
		}).
		AddStep(Step{
			Name: "second",
			Run:  func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensated = append(compensated, "second")
				return nil
			},
		}).
		AddStep(Step{Name: "third", Run: func(ctx context.Context) error {
			return errors.New("third step failed")
		}})

	err := saga.Execute(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"second", "first"}, compensated)
	assert.Equal(t, StateCompensated, saga.State())
}

func TestSagaFailedStepIsNotCompensated(t *testing.T) {
	compensatedFailing := false

	saga := New("partial", zap.NewNop()).
		AddStep(Step{
			Name: "failing",
			Run:  func(ctx context.Context) error { return errors.New("boom") },
			Compensate: func(ctx context.Context) error {
				compensatedFailing = true
				return nil
			},
		})

	err := saga.Execute(context.Background())
	require.Error(t, err)

	assert.False(t, compensatedFailing, "a step that never completed must not be compensated")
}

func TestSagaRetriesStep(t *testing.T) {
	attempts := 0

	saga := New("retry", zap.NewNop()).
		AddStep(Step{
			Name: "flaky",
			Run: func(ctx context.Context) error {
				attempts++
				if attempts < 3 {
					return errors.New("transient")
				}
				return nil
			},
			MaxRetries: 3,
			RetryDelay: 1,
		})

	require.NoError(t, saga.Execute(context.Background()))
	assert.Equal(t, 3, attempts)
}

func TestSagaRetryStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	saga := New("cancelled", zap.NewNop()).
		AddStep(Step{
			Name: "flaky",
			Run: func(ctx context.Context) error {
				attempts++
				cancel()
				return errors.New("transient")
			},
			MaxRetries: 5,
			RetryDelay: 1,
		})

	err := saga.Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
