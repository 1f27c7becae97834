// Package strings provides string helpers for data arriving from external registries,
// where absent values show up as nil, empty or whitespace-only strings.
package strings

import (
	"strings"
)

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsBlankPtr reports whether p is nil or points to a blank string.
func IsBlankPtr(p *string) bool {
	return p == nil || IsBlank(*p)
}

// AllPresent reports whether every value is non-blank.
//
// Example:
//
//	AllPresent("Storgata 1", "0150", "Oslo") // true
//	AllPresent("Storgata 1", " ", "Oslo")    // false
func AllPresent(values ...string) bool {
	for _, v := range values {
		if IsBlank(v) {
			return false
		}
	}
	return true
}

// TrimToPtr trims s and returns nil when the result is empty.
func TrimToPtr(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Deref returns the pointed-to value or "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
