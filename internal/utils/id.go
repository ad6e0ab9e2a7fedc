package utils

import "github.com/google/uuid"

// GenerateID returns an opaque unique token for new records.
func GenerateID() string {
	return uuid.NewString()
}
