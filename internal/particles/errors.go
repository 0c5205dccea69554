package particles

import "errors"

var (
	// ErrPoolExhausted indicates an allocation larger than the remaining capacity.
	ErrPoolExhausted = errors.New("particles: pool capacity exhausted")

	// ErrMissingCurve indicates a prototype without color, size or velocity data.
	ErrMissingCurve = errors.New("particles: prototype curve missing")

	// ErrInvalidLife indicates a negative lifetime range.
	ErrInvalidLife = errors.New("particles: invalid lifetime range")

	ErrUnknownCombineOp = errors.New("particles: unknown combine operator")
)
