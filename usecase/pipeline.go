package usecase

import (
	"context"
	"errors"
	"fmt"
)

// Step is one named stage of a pipeline.
type Step[In, Out any] struct {
	Name string
	Run  func(ctx context.Context, in In) (Out, error)
}

// StepError reports which stage of a Then chain failed. Index is the position inside the Then that
// produced it: 0 for the first step, 1 for the second.
type StepError struct {
	Index int
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Then runs first and feeds its output to second. The second step never runs if the first fails.
func Then[A, B, C any](first Step[A, B], second Step[B, C]) Step[A, C] {
	return Step[A, C]{
		Name: first.Name + "+" + second.Name,
		Run: func(ctx context.Context, in A) (C, error) {
			var zero C
			mid, err := first.Run(ctx, in)
			if err != nil {
				return zero, stepError(0, first.Name, err)
			}
			out, err := second.Run(ctx, mid)
			if err != nil {
				return zero, stepError(1, second.Name, err)
			}
			return out, nil
		},
	}
}

// FailedStep returns the name of the innermost failing step, or "" when err did not come from a pipeline.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

func stepError(index int, name string, err error) error {
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{Index: index, Step: name, Err: err}
}
