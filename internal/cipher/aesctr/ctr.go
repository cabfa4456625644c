package aesctr

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/idelchi/cipherbench/internal/cipher"
)

// Stream is an AES-256 keystream in counter mode. The counter for block n is IV + n,
// a 128-bit big-endian addition that wraps modulo 2^128.
//
// A Stream is safe for concurrent use: the round keys are only read after construction.
type Stream struct {
	rk     *roundKeys
	ivHigh uint64
	ivLow  uint64
}

// NewStream expands key once and returns the keystream starting at iv.
func NewStream(key, iv []byte) (*Stream, error) {
	if len(key) != cipher.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", cipher.ErrInvalidKeyLength, len(key), cipher.KeySize)
	}

	if len(iv) != cipher.IVSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", cipher.ErrInvalidIVLength, len(iv), cipher.IVSize)
	}

	return &Stream{
		rk:     expandKey(key),
		ivHigh: binary.BigEndian.Uint64(iv[:8]),
		ivLow:  binary.BigEndian.Uint64(iv[8:]),
	}, nil
}

// counter writes IV + block into ctr.
func (s *Stream) counter(ctr *[BlockSize]byte, block uint64) {
	counterAt(ctr, s.ivHigh, s.ivLow, block)
}

func counterAt(ctr *[BlockSize]byte, high, low, block uint64) {
	sum := low + block
	if sum < low {
		high++
	}

	binary.BigEndian.PutUint64(ctr[:8], high)
	binary.BigEndian.PutUint64(ctr[8:], sum)
}

// XORKeyStreamAt XORs src with the keystream starting at byte offset and writes the result to dst.
// A transform of one buffer split at any byte boundary equals the transform of the whole buffer,
// provided each piece is passed its absolute offset. dst must be at least as long as src.
func (s *Stream) XORKeyStreamAt(dst, src []byte, offset uint64) {
	var ctr, keystream [BlockSize]byte

	block := offset / BlockSize
	skip := int(offset % BlockSize)

	for len(src) > 0 {
		s.counter(&ctr, block)
		encryptBlock(s.rk, &keystream, &ctr)

		n := subtle.XORBytes(dst, src, keystream[skip:])
		dst, src = dst[n:], src[n:]

		skip = 0
		block++
	}
}

// XORKeyStream XORs src with the keystream from its start.
func (s *Stream) XORKeyStream(dst, src []byte) {
	s.XORKeyStreamAt(dst, src, 0)
}
