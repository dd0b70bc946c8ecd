// Package uuid wraps google/uuid for primary keys and opaque tokens.
package uuid

import (
	"strings"

	googleuuid "github.com/google/uuid"
)

// New generates a time-ordered UUIDv7 suitable for database primary keys.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to UUIDv4 if the clock sequence cannot be read
		return googleuuid.NewString()
	}
	return id.String()
}

// NewToken returns a random 32-character hex token (UUIDv4 without dashes).
func NewToken() string {
	return strings.ReplaceAll(googleuuid.NewString(), "-", "")
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
