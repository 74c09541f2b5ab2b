package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var (
	doubleQuoted = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	singleQuoted = regexp.MustCompile(`'(?:\\.|[^'\\])*'`)
)

// StripStringsAndComment blanks quoted strings and drops a trailing
// #-comment so braces inside them do not affect depth counting. A
// lightweight heuristic: a quoted '#' still truncates the line, which is
// acceptable for typical quest scripts.
func StripStringsAndComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	s = doubleQuoted.ReplaceAllString(s, `""`)
	s = singleQuoted.ReplaceAllString(s, `''`)
	return s
}

// BraceDelta returns open-brace count minus close-brace count for a line,
// ignoring braces inside strings and comments.
func BraceDelta(line string) int {
	t := StripStringsAndComment(line)
	return strings.Count(t, "{") - strings.Count(t, "}")
}
