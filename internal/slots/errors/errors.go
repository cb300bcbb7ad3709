package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrInvalidID = errors.New("invalid slot ID format")

	// ErrSlotUnavailable means the conditional registration update matched no
	// document: the slot filled up or already lists the user.
	ErrSlotUnavailable = errors.New("slot is full or user already registered")
)
