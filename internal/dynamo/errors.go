package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for evolution operations.
var (
	// ErrConfiguration indicates a shape, dimensionality or parameter mismatch.
	ErrConfiguration = errors.New("dynamo: configuration error")

	// ErrUnphysical indicates negative density or pressure during RHS assembly.
	ErrUnphysical = errors.New("dynamo: unphysical state")

	// ErrIO indicates a checkpoint could not be written.
	ErrIO = errors.New("dynamo: checkpoint i/o failure")
)

// ConfigurationError describes an invalid setup detected before any state is touched.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "dynamo: configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Configurationf builds a ConfigurationError.
func Configurationf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// UnphysicalStateError reports the cells that failed the positivity check.
type UnphysicalStateError struct {
	Field string
	Count int
	Cell  int
	Value float64
}

func (e *UnphysicalStateError) Error() string {
	return fmt.Sprintf("dynamo: unphysical state: %d cells with negative %s (first at cell %d: %g)",
		e.Count, e.Field, e.Cell, e.Value)
}

func (e *UnphysicalStateError) Unwrap() error {
	return ErrUnphysical
}

// IOError wraps a failed checkpoint operation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("dynamo: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// SimulationError wraps an error with outer-loop context.
type SimulationError struct {
	Iteration int
	Time      float64
	Wrapped   error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("iteration %d (t=%.4f): %v", e.Iteration, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
