package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrUnstable means a vertex position became NaN or Inf.
	ErrUnstable = errors.New("sim: simulation unstable (non-finite position)")

	ErrInvalidRun = errors.New("sim: invalid run configuration")

	ErrInvalidScript = errors.New("sim: invalid drag script")
)

// StepError wraps an error with the frame it happened on.
type StepError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
