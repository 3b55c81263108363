package field

import "errors"

var (
	// ErrNoSurface indicates a frame was requested without a drawing surface.
	ErrNoSurface = errors.New("field: no drawing surface")

	// ErrInvalidParams indicates field parameters outside their valid range.
	ErrInvalidParams = errors.New("field: invalid parameters")
)
