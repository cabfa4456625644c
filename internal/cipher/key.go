package cipher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/tink-crypto/tink-go/v2/subtle/random"
	"golang.org/x/crypto/hkdf"
)

// KeyMaterial is the key and IV shared by every engine of one benchmark run.
// It is immutable: accessors return copies.
type KeyMaterial struct {
	key [KeySize]byte
	iv  [IVSize]byte
}

// NewKeyMaterial draws a fresh key and IV from the system CSPRNG.
func NewKeyMaterial() KeyMaterial {
	var km KeyMaterial

	copy(km.key[:], random.GetRandomBytes(KeySize))
	copy(km.iv[:], RandomIV())

	return km
}

// DeriveKeyMaterial expands seed into a key and IV with HKDF-SHA256,
// so that runs sharing a seed transform identical bytes.
func DeriveKeyMaterial(seed string) (KeyMaterial, error) {
	reader := hkdf.New(sha256.New, []byte(seed), nil, []byte("cipherbench/key-material"))
	derived := make([]byte, KeySize+IVSize)

	if _, err := io.ReadFull(reader, derived); err != nil {
		return KeyMaterial{}, fmt.Errorf("deriving key material: %w", err)
	}

	var km KeyMaterial

	copy(km.key[:], derived[:KeySize])
	copy(km.iv[:], derived[KeySize:])

	return km, nil
}

// ParseKeyMaterial decodes a hex key and an optional hex IV.
// An empty IV is drawn from the system CSPRNG.
func ParseKeyMaterial(hexKey, hexIV string) (KeyMaterial, error) {
	var km KeyMaterial

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("invalid key format: %w", err)
	}

	if len(key) != KeySize {
		return KeyMaterial{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), KeySize)
	}

	copy(km.key[:], key)

	if hexIV == "" {
		copy(km.iv[:], RandomIV())

		return km, nil
	}

	iv, err := hex.DecodeString(hexIV)
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("invalid iv format: %w", err)
	}

	if len(iv) != IVSize {
		return KeyMaterial{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIVLength, len(iv), IVSize)
	}

	copy(km.iv[:], iv)

	return km, nil
}

// Key returns a copy of the key.
func (k KeyMaterial) Key() []byte {
	return append([]byte(nil), k.key[:]...)
}

// IV returns a copy of the IV.
func (k KeyMaterial) IV() []byte {
	return append([]byte(nil), k.iv[:]...)
}

// Fingerprint returns a short, non-reversible identifier of the key material for reports.
func (k KeyMaterial) Fingerprint() string {
	sum := sha256.Sum256(append(k.Key(), k.IV()...))

	return hex.EncodeToString(sum[:4])
}

// RandomIV returns IVSize random bytes. Engines use it for their default IV.
func RandomIV() []byte {
	return random.GetRandomBytes(IVSize)
}
