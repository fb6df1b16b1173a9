package engineerrors

import "fmt"

// ErrorCategory represents the kinds of recoverable faults inside the engine.
// None of these categories may abort the polling loop; the worst permissible
// outcome of any of them is an extra HOLD decision for one cycle.
type ErrorCategory string

const (
	// CategoryInsufficientData: too few bars for an indicator or metric window.
	CategoryInsufficientData ErrorCategory = "INSUFFICIENT_DATA"
	// CategoryCorruptState: unreadable or schema-mismatched persisted snapshot.
	CategoryCorruptState ErrorCategory = "CORRUPT_STATE"
	// CategoryUnknownFamily: a persisted genotype family no longer maps to a known type.
	CategoryUnknownFamily ErrorCategory = "UNKNOWN_FAMILY"
	// CategoryComputation: unexpected numerical fault inside a metric calculation.
	CategoryComputation ErrorCategory = "COMPUTATION_FAULT"
	// CategoryPersistence: snapshot write failure (logged, cycle continues).
	CategoryPersistence ErrorCategory = "PERSISTENCE"
)

// EngineError is a categorized error with component context.
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
}

func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// New creates a categorized engine error.
func New(category ErrorCategory, component, operation, message string) *EngineError {
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// Wrap wraps an existing error with engine error context.
func Wrap(err error, category ErrorCategory, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}
