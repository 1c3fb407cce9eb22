// Package sagas runs multi-write flows that must end consistent, such
// as linking a manual member while mirroring the recorded relationship
// as an edge pair. When a step fails, the completed steps are undone in
// reverse order.
package sagas

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step is one write in a flow. Run performs the write; Compensate
// undoes it when a later step fails. Retries apply to Run only,
// Compensate runs at most once.
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
	MaxRetries int
	RetryDelay time.Duration
}

// State is where a saga execution currently stands
type State string

const (
	StatePending     State = "PENDING"
	StateRunning     State = "RUNNING"
	StateCompleted   State = "COMPLETED"
	StateCompensated State = "COMPENSATED"
)

// Saga executes its steps in order and compensates on failure
type Saga struct {
	name   string
	steps  []Step
	state  State
	logger *zap.Logger
}

// New creates an empty saga
func New(name string, logger *zap.Logger) *Saga {
	return &Saga{
		name:   name,
		state:  StatePending,
		logger: logger,
	}
}

// AddStep appends a step; steps run in the order they were added
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// State returns where the execution currently stands
func (s *Saga) State() State {
	return s.state
}

// Execute runs all steps. On a step failure the compensations of the
// completed steps run in reverse order; the failed step itself is never
// compensated. The returned error carries the failing step's error.
func (s *Saga) Execute(ctx context.Context) error {
	s.state = StateRunning

	for i, step := range s.steps {
		if err := s.runWithRetry(ctx, step); err != nil {
			s.logger.Error("Flow step failed",
				zap.String("flow", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.compensate(ctx, i)
			s.state = StateCompensated
			return fmt.Errorf("%s failed at step %s: %w", s.name, step.Name, err)
		}
	}

	s.state = StateCompleted
	return nil
}

func (s *Saga) runWithRetry(ctx context.Context, step Step) error {
	attempts := step.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	delay := step.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			s.logger.Warn("Retrying flow step",
				zap.String("flow", s.name),
				zap.String("step", step.Name),
				zap.Int("attempt", attempt),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if lastErr = step.Run(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// compensate undoes the steps before index failed, in reverse order.
// A compensation failure is logged and the rest still run; stopping
// midway would leave even more state behind.
func (s *Saga) compensate(ctx context.Context, failed int) {
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error("Flow compensation failed",
				zap.String("flow", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
	}
}
