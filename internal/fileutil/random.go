package fileutil

import (
	"crypto/rand"
	"fmt"
	"io"
	mathrand "math/rand/v2"
)

// RandomBuffer returns n bytes of test data.
// A nil seed draws from the system CSPRNG; otherwise the bytes are a ChaCha8 stream of the seed
// and repeat across runs.
func RandomBuffer(n int, seed *[32]byte) ([]byte, error) {
	buf := make([]byte, n)

	var source io.Reader = rand.Reader
	if seed != nil {
		source = mathrand.NewChaCha8(*seed)
	}

	if _, err := io.ReadFull(source, buf); err != nil {
		return nil, fmt.Errorf("generating %d bytes of test data: %w", n, err)
	}

	return buf, nil
}
