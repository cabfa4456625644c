package aesctr

import (
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockVector struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	Plaintext  string `yaml:"plaintext"`
	Ciphertext string `yaml:"ciphertext"`
}

type ctrVector struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	IV         string `yaml:"iv"`
	Plaintext  string `yaml:"plaintext"`
	Ciphertext string `yaml:"ciphertext"`
}

type vectors struct {
	Block []blockVector `yaml:"block"`
	CTR   []ctrVector   `yaml:"ctr"`
}

func loadVectors(t *testing.T) vectors {
	t.Helper()

	data, err := os.ReadFile("testdata/vectors.yml")
	require.NoError(t, err)

	var v vectors
	require.NoError(t, yaml.Unmarshal(data, &v))
	require.NotEmpty(t, v.Block)
	require.NotEmpty(t, v.CTR)

	return v
}

// unhex decodes hex that may be folded across lines.
func unhex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	require.NoError(t, err)

	return b
}

func TestEncryptBlockKnownAnswers(t *testing.T) {
	t.Parallel()

	for _, tc := range loadVectors(t).Block {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			var src, dst [BlockSize]byte

			copy(src[:], unhex(t, tc.Plaintext))
			encryptBlock(expandKey(unhex(t, tc.Key)), &dst, &src)

			assert.Equal(t, tc.Ciphertext, hex.EncodeToString(dst[:]))
		})
	}
}

func TestStreamKnownAnswers(t *testing.T) {
	t.Parallel()

	for _, tc := range loadVectors(t).CTR {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			stream, err := NewStream(unhex(t, tc.Key), unhex(t, tc.IV))
			require.NoError(t, err)

			plaintext := unhex(t, tc.Plaintext)
			got := make([]byte, len(plaintext))
			stream.XORKeyStream(got, plaintext)

			assert.Equal(t, unhex(t, tc.Ciphertext), got)
		})
	}
}

func TestExpandKeyLastRoundKey(t *testing.T) {
	t.Parallel()

	// FIPS-197 A.3: the final words of the 256-bit key expansion.
	key := unhex(t, "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")
	rk := expandKey(key)

	assert.Equal(t, "fe4890d1e6188d0b046df344706c631e", hex.EncodeToString(rk[BlockSize*rounds:]))
}

func TestCounterCarry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		high, low uint64
		block     uint64
		want      string
	}{
		{"no carry", 0, 1, 2, "00000000000000000000000000000003"},
		{"carry into high half", 0, ^uint64(0), 1, "00000000000000010000000000000000"},
		{"wrap at 2^128", ^uint64(0), ^uint64(0), 1, "00000000000000000000000000000000"},
		{"large block index", 0x0102030405060708, ^uint64(0) - 1, 3, "01020304050607090000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctr [BlockSize]byte

			counterAt(&ctr, tt.high, tt.low, tt.block)

			assert.Equal(t, tt.want, hex.EncodeToString(ctr[:]))
		})
	}
}

func TestXtime(t *testing.T) {
	t.Parallel()

	// FIPS-197 4.2.1: {57} * {02} = {ae}, {ae} * {02} = {47}.
	assert.Equal(t, byte(0xae), xtime(0x57))
	assert.Equal(t, byte(0x47), xtime(0xae))
}
