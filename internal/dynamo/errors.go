package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrDegenerateGeometry indicates two particles at the same position, so
	// the collision normal is undefined.
	ErrDegenerateGeometry = errors.New("dynamo: degenerate collision geometry (coincident particles)")

	// ErrInvalidThermalState indicates a non-positive or non-finite
	// temperature or mass fed to the speed sampler.
	ErrInvalidThermalState = errors.New("dynamo: invalid thermal state (temperature and mass must be positive)")

	// ErrOutOfRangeConfig indicates a configuration value outside its bounds.
	ErrOutOfRangeConfig = errors.New("dynamo: configuration value out of range")

	// ErrMissingParticle indicates a candidate pair referencing a particle
	// handle that does not exist.
	ErrMissingParticle = errors.New("dynamo: pair references missing particle")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrInvalidState indicates particle state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// TickError wraps an error with the tick it happened in.
type TickError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *TickError) Error() string {
	return e.Wrapped.Error()
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
