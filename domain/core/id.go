package core

import (
	"github.com/google/uuid"
)

// ID is an opaque identifier for sync runs and stored records
type ID string

// NewID creates a new random ID
func NewID() ID {
	return ID(uuid.NewString())
}

// String returns the ID as a string
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks whether the ID is unset
func (id ID) IsEmpty() bool {
	return id == ""
}
