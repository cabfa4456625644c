// Package pathmatch matches slash-separated identifiers such as "AES-256-CTR/ThreadParallel"
// against glob patterns with find -path semantics:
//   - * matches any run of characters, including /
//   - ? matches exactly one character, including /
//   - [...] matches one character from the set; [!...] negates it
//   - \ escapes the next character
//
// Unlike filepath.Match, a * may cross the separator, so "*/GPU-*" and "*GPU*" both select
// every kernel backend.
package pathmatch

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Option tunes how patterns are compiled.
type Option func(*options)

type options struct {
	foldCase bool
}

// IgnoreCase makes patterns match regardless of letter case.
func IgnoreCase() Option {
	return func(o *options) { o.foldCase = true }
}

// Match reports whether id matches pattern.
func Match(pattern, id string, opts ...Option) (bool, error) {
	re, err := compile(pattern, collect(opts))
	if err != nil {
		return false, err
	}

	return re.MatchString(id), nil
}

// Matcher holds pre-compiled patterns.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles patterns for repeated use.
func NewMatcher(patterns []string, opts ...Option) (*Matcher, error) {
	o := collect(opts)
	matcher := &Matcher{patterns: make([]*regexp.Regexp, 0, len(patterns))}

	for _, pattern := range patterns {
		re, err := compile(pattern, o)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}

		matcher.patterns = append(matcher.patterns, re)
	}

	return matcher, nil
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// MatchAny reports whether id matches at least one pattern.
func (m *Matcher) MatchAny(id string) bool {
	for _, re := range m.patterns {
		if re.MatchString(id) {
			return true
		}
	}

	return false
}

func collect(opts []Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

type cacheKey struct {
	pattern string
	opts    options
}

var cache sync.Map //nolint:gochecknoglobals // compiled patterns are immutable and shared

func compile(pattern string, o options) (*regexp.Regexp, error) {
	key := cacheKey{pattern: pattern, opts: o}

	if v, ok := cache.Load(key); ok {
		return v.(*regexp.Regexp), nil //nolint:forcetypeassert // only *regexp.Regexp is stored
	}

	expr, err := translate(pattern)
	if err != nil {
		return nil, err
	}

	if o.foldCase {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	cache.Store(key, re)

	return re, nil
}

// translate turns a glob into an anchored regular expression.
func translate(pattern string) (string, error) {
	var out strings.Builder

	out.WriteByte('^')

	for pos := 0; pos < len(pattern); {
		switch ch := pattern[pos]; ch {
		case '*':
			out.WriteString(".*")
			pos++
		case '?':
			out.WriteByte('.')
			pos++
		case '[':
			end, err := classEnd(pattern, pos)
			if err != nil {
				return "", err
			}

			class := pattern[pos : end+1]
			if strings.HasPrefix(class, "[!") && len(class) > 2 {
				class = "[^" + class[2:]
			}

			out.WriteString(class)
			pos = end + 1
		case '\\':
			if pos+1 == len(pattern) {
				return "", fmt.Errorf("trailing backslash in pattern %q", pattern)
			}

			out.WriteString(regexp.QuoteMeta(pattern[pos+1 : pos+2]))
			pos += 2
		default:
			out.WriteString(regexp.QuoteMeta(string(ch)))
			pos++
		}
	}

	out.WriteByte('$')

	return out.String(), nil
}

// classEnd returns the index of the ] closing the bracket expression opened at pos.
// A ] directly after [ or [! is a literal member of the set.
func classEnd(pattern string, pos int) (int, error) {
	idx := pos + 1

	if idx < len(pattern) && pattern[idx] == '!' {
		idx++
	}

	if idx < len(pattern) && pattern[idx] == ']' {
		idx++
	}

	if end := strings.IndexByte(pattern[idx:], ']'); end >= 0 {
		return idx + end, nil
	}

	return 0, fmt.Errorf("unclosed character class in pattern %q", pattern)
}
