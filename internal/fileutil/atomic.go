// Package fileutil provides shared file and buffer helpers.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempContext holds state for an atomic file write: content goes to a temporary file
// next to the target and is renamed over it only once complete.
type TempContext struct {
	TmpFile *os.File
	TmpName string
	OutPath string
}

// NewTempContext creates a temp file in the directory of outPath.
// Caller must defer CleanupOnError.
func NewTempContext(outPath string) (*TempContext, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		OutPath: outPath,
	}, nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:errcheck,gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:errcheck,gosec // best-effort cleanup
	}
}

// Commit closes the temp file, applies perm and renames it to the output path.
func (tc *TempContext) Commit(perm os.FileMode) error {
	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Chmod(tc.TmpName, perm); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tc.TmpName, tc.OutPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// WriteAtomic writes the output of write to path, leaving any previous file intact on failure.
func WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	tc, err := NewTempContext(path)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	if err = write(tc.TmpFile); err != nil {
		return err
	}

	const reportPerm = 0o644

	return tc.Commit(reportPerm)
}
