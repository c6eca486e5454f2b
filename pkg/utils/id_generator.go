// Package utils provides shared helpers: the fare rate card, display
// formatting and identifier generation.
//
// Go Learning Note — "pkg/" Directory Convention:
// Code under pkg/ is intended to be importable by external projects (unlike
// internal/ which is compiler-enforced private). The rate card lives here so
// other tools can quote the same prices without pulling in the HTTP service.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID creates a new UUID v4 string. Trip sessions and request IDs
// use it; a random ID keeps session URLs unguessable.
func GenerateID() string {
	return uuid.New().String()
}

// IsValidID reports whether s looks like an ID produced by GenerateID.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
