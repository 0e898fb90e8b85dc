// Package uid generates request correlation ids.
package uid

import "github.com/google/uuid"

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}

// UUID generates UUIDv7 strings, which sort by creation time in logs.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
