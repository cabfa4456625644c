package cipher

import "errors"

var (
	// ErrInvalidKeyLength is returned when a key is not exactly KeySize bytes.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrInvalidIVLength is returned when a non-nil IV is not exactly IVSize bytes.
	ErrInvalidIVLength = errors.New("invalid iv length")
	// ErrShortBuffer is returned when the destination cannot hold the transformed input.
	ErrShortBuffer = errors.New("destination buffer too short")
	// ErrBackendUnavailable is returned when the backend's runtime or hardware is not present.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrResourceAcquisition is returned when backend resources could not be allocated.
	ErrResourceAcquisition = errors.New("acquiring backend resources")
)

// Skippable reports whether err means the engine cannot run on this host,
// as opposed to a failure of the engine itself.
func Skippable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrResourceAcquisition)
}
