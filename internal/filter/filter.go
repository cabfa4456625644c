// Package filter selects engines by their "ALGORITHM/Backend" identifier using find -path glob semantics.
package filter

import (
	"fmt"

	"github.com/idelchi/cipherbench/pkg/pathmatch"
)

// Filter selects identifiers based on include/exclude patterns.
// Empty includes means "match all". Excludes always win.
type Filter struct {
	includes *pathmatch.Matcher
	excludes *pathmatch.Matcher

	hasIncludes bool
}

// New compiles include/exclude patterns into a reusable filter.
// Patterns match case-insensitively.
func New(includes, excludes []string) (*Filter, error) {
	inc, err := pathmatch.NewMatcher(includes, pathmatch.IgnoreCase())
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	exc, err := pathmatch.NewMatcher(excludes, pathmatch.IgnoreCase())
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{includes: inc, excludes: exc, hasIncludes: len(includes) > 0}, nil
}

// Keep reports whether id passes the filter.
func (f *Filter) Keep(id string) bool {
	included := !f.hasIncludes || f.includes.MatchAny(id)
	excluded := f.excludes.MatchAny(id)

	return included && !excluded
}
