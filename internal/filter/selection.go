package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrInvalidSelection is returned for selection files that hold anything but pattern lists.
var ErrInvalidSelection = errors.New("invalid selection file")

// List names the pattern list that the globs of an array file are added to.
type List int

const (
	// Includes makes array entries include patterns (--include-from).
	Includes List = iota
	// Excludes makes array entries exclude patterns (--exclude-from).
	Excludes
)

// Selection is the content of a JSONC selection file. The file is either an array of globs,
// which feed the list the file was given for, or an object with "include" and "exclude" arrays.
type Selection struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// ReadSelection reads the selection file at path. Comments and trailing commas are allowed.
func ReadSelection(path string, list List) (Selection, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return Selection{}, fmt.Errorf("reading selection file: %w", err)
	}

	sel, err := parseSelection(jsonc.ToJSON(data), list)
	if err != nil {
		return Selection{}, fmt.Errorf("selection file %q: %w", path, err)
	}

	return sel, nil
}

func parseSelection(data []byte, list List) (Selection, error) {
	var sel Selection

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		var globs []string
		if err := json.Unmarshal(data, &globs); err != nil {
			return Selection{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}

		if list == Excludes {
			sel.Exclude = globs
		} else {
			sel.Include = globs
		}
	} else {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&sel); err != nil {
			return Selection{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
		}
	}

	for _, globs := range [][]string{sel.Include, sel.Exclude} {
		for i, glob := range globs {
			if glob == "" {
				return Selection{}, fmt.Errorf("%w: empty pattern at position %d", ErrInvalidSelection, i+1)
			}
		}
	}

	return sel, nil
}
