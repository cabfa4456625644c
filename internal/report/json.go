package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/idelchi/cipherbench/internal/fileutil"
)

// WriteJSON writes r to path atomically.
func WriteJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))

		return err
	}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
