// Package strings provides string utilities for loosely formatted input keys.
package strings

import (
	"strings"
)

const byteOrderMark = "\ufeff"

// NormalizeKey trims whitespace and a leading byte order mark and lowercases
// the result, so "  Last Name" and a BOM-prefixed "last name" compare equal.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, byteOrderMark)))
}

// IndexKeys maps each normalized, non-empty key to the position of its first
// occurrence in values.
//
// Example:
//
//	IndexKeys([]string{" Last Name ", "DOB", "last name"})
//	// Returns: map[string]int{"last name": 0, "dob": 1}
func IndexKeys(values []string) map[string]int {
	index := make(map[string]int, len(values))
	for i, v := range values {
		key := NormalizeKey(v)
		if key == "" {
			continue
		}
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	return index
}

// FirstMissing returns the first required key absent from index, in the order
// of required. ok is false when every key is present.
func FirstMissing(index map[string]int, required []string) (missing string, ok bool) {
	for _, key := range required {
		if _, present := index[NormalizeKey(key)]; !present {
			return key, true
		}
	}
	return "", false
}
