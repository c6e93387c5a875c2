package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Ingestion errors
	ErrFeedUnreadable = errors.New("feed unreadable")
	ErrMissingField   = errors.New("required field missing")

	// Date and derivation errors
	ErrInvalidRange   = errors.New("end date precedes start date")
	ErrUnparsableDate = errors.New("unparsable date")

	// Aggregation errors
	ErrEmptyGroup = errors.New("evidence group has no members")
)

// Error constructors with context
func NewMissingFieldError(itemID, field string) error {
	return fmt.Errorf("%w: item %s has no %s", ErrMissingField, itemID, field)
}

func NewInvalidRangeError(start, end Timestamp) error {
	return fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
}

func NewUnparsableDateError(itemID, field, raw string, err error) error {
	return fmt.Errorf("%w: item %s field %s value %q: %v", ErrUnparsableDate, itemID, field, raw, err)
}

// Error checking helpers
func IsIngestionError(err error) bool {
	return errors.Is(err, ErrFeedUnreadable) ||
		errors.Is(err, ErrMissingField)
}

func IsDerivationError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrUnparsableDate)
}

func IsAggregationError(err error) bool {
	return errors.Is(err, ErrEmptyGroup)
}
