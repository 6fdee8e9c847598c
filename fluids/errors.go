package fluids

import "errors"

// Errors returned by the fluids and riemann packages. Call sites wrap these
// with context, match them with errors.Is.
var (
	// ErrInvalidState is a physical invariant violation: non-positive density
	// or pressure, or a non-finite entry.
	ErrInvalidState = errors.New("fluids: invalid state")

	// ErrDomain means the equation of state or the eigensystem is undefined
	// at the given state, e.g. zero sound speed or a vacuum.
	ErrDomain = errors.New("fluids: outside domain of definition")

	// ErrShape is an array length, shape or broadcast mismatch.
	ErrShape = errors.New("fluids: shape mismatch")

	// ErrDimension is a spatial axis outside the model's spatial rank.
	ErrDimension = errors.New("fluids: dimension out of range")

	// ErrConfiguration means an object was used before it was configured.
	ErrConfiguration = errors.New("fluids: not configured")

	// ErrDescriptorMismatch means states built from incompatible descriptors
	// were combined.
	ErrDescriptorMismatch = errors.New("fluids: descriptor mismatch")
)
