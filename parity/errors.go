package parity

import (
	"fmt"
	"time"
)

// InsufficientPairsError marks an expiry without enough valid pairs for
// direct calibration. Non-fatal: the tenor is left unresolved and later
// filled by interpolation.
type InsufficientPairsError struct {
	Expiry time.Time
	Got    int
	Min    int
}

func (e *InsufficientPairsError) Error() string {
	return fmt.Sprintf("insufficient pairs for %s: got %d, need %d",
		e.Expiry.Format("2006-01-02"), e.Got, e.Min)
}

// ConvergenceError reports a calibration optimizer that failed to converge.
// Scoped to one tenor (direct) or to the smooth method as a whole.
type ConvergenceError struct {
	Method     string
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s calibration did not converge after %d iterations (residual %.3e)",
		e.Method, e.Iterations, e.Residual)
}

// OutOfBoundsError flags a derived quantity outside its configured sanity
// bounds. Flag-only unless strict bounds are requested.
type OutOfBoundsError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s %.6f outside [%.4f, %.4f]", e.Field, e.Value, e.Min, e.Max)
}

// DataValidationError reports malformed input. Fatal to the run only when
// the entire input set is unusable.
type DataValidationError struct {
	Reason string
}

func (e *DataValidationError) Error() string {
	return "invalid input data: " + e.Reason
}
