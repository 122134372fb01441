package core

import "errors"

var (
	// ErrNoCamera is returned when a renderer is committed without a camera bound
	ErrNoCamera = errors.New("renderer has no camera")

	// ErrIncompatibleCamera is returned when a strategy needs a capability the camera lacks
	ErrIncompatibleCamera = errors.New("camera does not support the selected render strategy")

	// ErrInvalidState is returned when a renderer operation is called out of order
	ErrInvalidState = errors.New("invalid renderer state")

	// ErrWrongEntryPoint is returned when a lane or stream entry point is called on a scalar-only object
	ErrWrongEntryPoint = errors.New("wrong entry point for this object")

	// ErrUnsupportedLayout is returned for mesh buffers whose element type is not supported
	ErrUnsupportedLayout = errors.New("unsupported buffer layout")

	// ErrNotImplemented marks features that are recognised but not supported
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidParameter is returned when a committed parameter is out of range
	ErrInvalidParameter = errors.New("invalid parameter")
)
