// Package trailer rewrites commit messages so that they end with a canonical Signed-off-by
// trailer. All functions operate on raw bytes: messages and identities are treated as an ASCII
// superset and never decoded.
package trailer

import (
	"bytes"
	"errors"
)

// SignedOffBy is the label of the trailer managed by this package.
const SignedOffBy = "Signed-off-by:"

// ErrEmptyMessage is returned when Rework is asked to rewrite an empty commit message.
var ErrEmptyMessage = errors.New("expected a non-empty commit message")

type reworkConfig struct {
	deduplicate bool
}

// Option is an option that can be passed to Rework.
type Option func(*reworkConfig)

// WithDeduplication causes Rework to keep only the first occurrence of every Signed-off-by line
// that appears more than once verbatim. Other lines are left untouched.
func WithDeduplication() Option {
	return func(cfg *reworkConfig) {
		cfg.deduplicate = true
	}
}

// Line returns the canonical trailer line for the given identity.
func Line(identity []byte) []byte {
	line := make([]byte, 0, len(SignedOffBy)+1+len(identity))
	line = append(line, SignedOffBy...)
	line = append(line, ' ')
	return append(line, identity...)
}

// Rework rewrites the commit message so that it ends with the Signed-off-by trailer for the given
// identity. The message is expected to be stripped of surrounding whitespace by the caller.
//
// If the last non-blank line contains the Signed-off-by label anywhere, it is dropped. The
// canonical trailer is appended unless a line equal to it already exists somewhere in the message.
// Trailing blank lines are removed both before and after the trailer has been handled, so the
// result never ends with a blank line.
func Rework(message, identity []byte, opts ...Option) ([]byte, error) {
	if len(message) == 0 {
		return nil, ErrEmptyMessage
	}

	var cfg reworkConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	lines := bytes.Split(message, []byte{'\n'})
	for i := range lines {
		lines[i] = bytes.TrimRightFunc(lines[i], isSpace)
	}

	lines = dropTrailingBlankLines(lines)

	trailer := Line(identity)

	// Any last line mentioning the label is replaced, while only an exact line counts as already
	// present below.
	if len(lines) > 0 && bytes.Contains(lines[len(lines)-1], []byte(SignedOffBy)) {
		lines = lines[:len(lines)-1]
	}

	if !containsLine(lines, trailer) {
		lines = append(lines, trailer)
	}

	if cfg.deduplicate {
		lines = deduplicateTrailers(lines)
	}

	lines = dropTrailingBlankLines(lines)

	return bytes.Join(lines, []byte{'\n'}), nil
}

// Deduplicate returns the lines with every repeated value removed. The first occurrence of each
// value is kept and the relative order of kept lines is preserved.
func Deduplicate(lines [][]byte) [][]byte {
	seen := make(map[string]struct{}, len(lines))
	deduplicated := make([][]byte, 0, len(lines))

	for _, line := range lines {
		if _, ok := seen[string(line)]; ok {
			continue
		}
		seen[string(line)] = struct{}{}
		deduplicated = append(deduplicated, line)
	}

	return deduplicated
}

// deduplicateTrailers applies Deduplicate to the Signed-off-by lines only, keeping all other
// lines in place.
func deduplicateTrailers(lines [][]byte) [][]byte {
	var trailers [][]byte
	for _, line := range lines {
		if bytes.Contains(line, []byte(SignedOffBy)) {
			trailers = append(trailers, line)
		}
	}

	pending := make(map[string]bool, len(trailers))
	for _, trailer := range Deduplicate(trailers) {
		pending[string(trailer)] = true
	}

	result := make([][]byte, 0, len(lines))
	for _, line := range lines {
		if bytes.Contains(line, []byte(SignedOffBy)) {
			if !pending[string(line)] {
				continue
			}
			pending[string(line)] = false
		}
		result = append(result, line)
	}

	return result
}

func dropTrailingBlankLines(lines [][]byte) [][]byte {
	for len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func containsLine(lines [][]byte, needle []byte) bool {
	for _, line := range lines {
		if bytes.Equal(line, needle) {
			return true
		}
	}
	return false
}

// TrimSpace strips leading and trailing ASCII whitespace from the message, which is how callers
// are expected to prepare messages before passing them to Rework.
func TrimSpace(message []byte) []byte {
	return bytes.TrimFunc(message, isSpace)
}

// isSpace matches the ASCII whitespace characters. Bytes above 0x7f are left alone so that
// non-ASCII content passes through untouched.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
