package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrInvalidID = errors.New("invalid slot ID format")

	// ErrDuplicateSlot is returned by the repository when the unique
	// (tutor_id, start_time) index rejects an insert. Registration
	// treats it as an idempotent skip, not a failure.
	ErrDuplicateSlot = errors.New("slot already registered for this tutor and start time")

	// ErrSlotTaken is returned when a conditional booked flip matches
	// no document: the slot was consumed or deleted since it was read.
	ErrSlotTaken = errors.New("slot is no longer available")
)
