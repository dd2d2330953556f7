package hazard

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned for non-positive frame dimensions or
// malformed bounding boxes. Callers on the frame pipeline are expected to
// substitute Safe rather than propagate.
var ErrInvalidGeometry = errors.New("hazard: invalid geometry")

// GeometryError carries the offending dimensions alongside ErrInvalidGeometry.
type GeometryError struct {
	FrameWidth  float64
	FrameHeight float64
	Detail      string
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("hazard: invalid geometry (%gx%g): %s", e.FrameWidth, e.FrameHeight, e.Detail)
}

// Unwrap returns ErrInvalidGeometry so errors.Is works.
func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}
