package quest

import "errors"

// Sentinel errors for the quest engine. Callers match with errors.Is;
// the wrapped message carries the offending ID or dependency list.
var (
	// ErrInvalidArgument indicates malformed input: an empty ID or title,
	// an unrecognized status or quest type, or a bad dependency value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists indicates an add with an ID that is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates an operation referenced an unknown quest ID.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates a well-formed request blocked by the
	// quest's current state or by unmet dependencies.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict indicates the dependency graph contains a cycle.
	ErrConflict = errors.New("conflict")

	// ErrInvariant indicates an internal algorithm assumption was violated.
	// It should never occur and signals a defect, not a runtime condition.
	ErrInvariant = errors.New("invariant violation")
)
