package dynamo

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for simulation operations.
var (
	// ErrDomain indicates a violated physical precondition.
	ErrDomain = errors.New("dynamo: physical domain violation")

	// ErrConfiguration indicates malformed or out-of-range startup configuration.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrStopped indicates a step was requested after the run was stopped.
	ErrStopped = errors.New("dynamo: simulation stopped")
)

// DomainError reports a quantity whose value lies outside the range where the
// model is defined. It matches ErrDomain with errors.Is.
type DomainError struct {
	Quantity string
	Value    float64
	Reason   string
}

// NewDomainError builds a DomainError.
func NewDomainError(quantity string, value float64, reason string) *DomainError {
	return &DomainError{Quantity: quantity, Value: value, Reason: reason}
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s = %g: %s", e.Quantity, e.Value, e.Reason)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// ConfigurationError collects every problem found while validating a
// configuration so they can be reported together.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Add records a problem. Format arguments follow fmt.Sprintf.
func (e *ConfigurationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Err returns nil when no problems were recorded.
func (e *ConfigurationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
