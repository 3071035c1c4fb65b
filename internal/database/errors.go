package repository

import "errors"

// Gateway error kinds. The engine picks "re-prompt this step" vs.
// "abort" based on which of these a commit returns.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotTaken means a confirmed booking already holds the
	// amenity/date/slot combination.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrDuplicateCode means the generated pass code collides with an
	// existing one; the caller regenerates and retries.
	ErrDuplicateCode = errors.New("pass code already exists")

	// ErrNotConsumable means the conditional consume matched no
	// document: the pass was already used, revoked, or raced another
	// check-in.
	ErrNotConsumable = errors.New("pass not consumable")
)
