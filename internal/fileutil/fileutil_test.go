package fileutil_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/cipherbench/internal/fileutil"
)

func TestWriteAtomicReplaces(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "new\n")

		return err
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	assertOnlyFile(t, path)
}

func TestWriteAtomicKeepsPreviousOnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	failed := errors.New("disk full")

	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, "half a rec"); err != nil {
			return err
		}

		return failed
	})
	require.ErrorIs(t, err, failed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(got))

	assertOnlyFile(t, path)
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "results.csv")

	err := fileutil.WriteAtomic(path, func(io.Writer) error { return nil })
	require.ErrorContains(t, err, "preparing atomic write")
	assert.NoFileExists(t, path)
}

// assertOnlyFile checks that no temporary file is left next to path.
func assertOnlyFile(t *testing.T, path string) {
	t.Helper()

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestRandomBuffer(t *testing.T) {
	t.Parallel()

	seed := [32]byte{1, 2, 3}
	other := [32]byte{3, 2, 1}

	first, err := fileutil.RandomBuffer(4096, &seed)
	require.NoError(t, err)

	again, err := fileutil.RandomBuffer(4096, &seed)
	require.NoError(t, err)

	different, err := fileutil.RandomBuffer(4096, &other)
	require.NoError(t, err)

	assert.Equal(t, first, again, "same seed, same bytes")
	assert.NotEqual(t, first, different)

	prefix, err := fileutil.RandomBuffer(100, &seed)
	require.NoError(t, err)
	assert.Equal(t, first[:100], prefix, "shorter buffers are a prefix of the stream")

	unseeded, err := fileutil.RandomBuffer(4096, nil)
	require.NoError(t, err)
	assert.Len(t, unseeded, 4096)
	assert.NotEqual(t, make([]byte, 4096), unseeded)

	empty, err := fileutil.RandomBuffer(0, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
