package bench

import "errors"

var (
	// ErrVerificationMismatch is logged when a decrypted chunk differs from its plaintext.
	ErrVerificationMismatch = errors.New("decrypted data does not match plaintext")
	// ErrInvalidPoint is returned for a test point that cannot be measured.
	ErrInvalidPoint = errors.New("invalid test point")
)
