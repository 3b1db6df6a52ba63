package util

import "strings"

// TrimAndLower trims whitespace and converts to lowercase
func TrimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitKeyValue splits a "key=value" argument at the first '='.
// The boolean reports whether a '=' was present.
func SplitKeyValue(s string) (string, string, bool) {
	i := strings.Index(s, "=")
	if i < 0 {
		return strings.TrimSpace(s), "", false
	}
	return strings.TrimSpace(s[:i]), s[i+1:], true
}
