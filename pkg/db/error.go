package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Driver-specific substrings for unique violations. gorm translates most
// of these to ErrDuplicatedKey, but raw driver errors still leak through
// on some paths (CreateInBatches, upstream wrapping).
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint", // postgres 23505
	"Error 1062",                // mysql
	"UNIQUE constraint failed",  // sqlite
	"constraint failed: UNIQUE", // glebarez sqlite
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation
// from any of the supported dialects. Repositories translate a true
// result into their domain's duplicate sentinel.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
