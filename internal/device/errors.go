package device

import "errors"

var (
	// ErrUnavailable is returned when no compute device could be opened.
	ErrUnavailable = errors.New("no compute device available")
	// ErrOutOfMemory is returned when an allocation exceeds the device's free memory.
	ErrOutOfMemory = errors.New("device out of memory")
	// ErrReleased is returned when a released context, buffer or kernel is used.
	ErrReleased = errors.New("device object already released")
	// ErrMissingArg is returned when a kernel is enqueued with unset arguments.
	ErrMissingArg = errors.New("kernel argument not set")
	// ErrUnknownKind is returned for an unrecognized device kind.
	ErrUnknownKind = errors.New("unknown device kind")
)
