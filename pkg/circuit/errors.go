package circuit

import "errors"

var (
	// ErrUnknownVariable means a probe or variable name does not resolve
	// to anything the circuit knows about.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrStructural is a singular solve the builder can blame on circuit
	// topology: a floating subcircuit with no conduction path to ground,
	// or a node wired to a single terminal.
	ErrStructural = errors.New("structural error")

	// ErrNewtonDidNotConverge means the nonlinear iteration ran out of
	// iterations before the solution settled.
	ErrNewtonDidNotConverge = errors.New("newton iteration did not converge")

	// ErrTimeStepNonPositive rejects transient continuation with a zero
	// or negative step.
	ErrTimeStepNonPositive = errors.New("time step must be positive")

	// ErrInvalidParameter rejects out-of-range component parameters such
	// as a non-positive resistance.
	ErrInvalidParameter = errors.New("invalid parameter")
)
