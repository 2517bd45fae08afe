package mesh

import (
	"errors"
	"fmt"
)

// Domain errors for mesh construction and vertex access.
var (
	// ErrInvalidTopology indicates a position or index array whose length is
	// not a multiple of 3.
	ErrInvalidTopology = errors.New("mesh: invalid topology (length not a multiple of 3)")

	// ErrIndexOutOfRange indicates a vertex id that does not exist.
	ErrIndexOutOfRange = errors.New("mesh: vertex index out of range")

	// ErrInvalidMass indicates a negative vertex mass.
	ErrInvalidMass = errors.New("mesh: mass must be non-negative")
)

// IndexError reports which id was out of range and how many vertices exist.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %d (vertex count %d)", ErrIndexOutOfRange.Error(), e.Index, e.Count)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
