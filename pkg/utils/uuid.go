package utils

import "github.com/google/uuid"

// NewUUID returns a fresh random UUID string for primary keys.
func NewUUID() string {
	return uuid.NewString()
}

// IsUUID checks if the string is a valid UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
