// Package taxid validates Pakistani tax registration identifiers.
package taxid

import "strings"

// Valid reports whether s is an acceptable NTN or CNIC: all digits, with
// a length of 7 (NTN), 9 (STRN-era NTN) or 13 (CNIC).
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 7, 9, 13:
	default:
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize strips spaces and dashes, the two separators users paste in.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
