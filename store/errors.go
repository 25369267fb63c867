package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record matches the requested id.
	ErrNotFound = errors.New("catalog: entity not found")

	// ErrNoFieldsToUpdate is returned when a patch carries no effective fields.
	ErrNoFieldsToUpdate = errors.New("catalog: no fields to update")

	// ErrParentRequired is returned when a child operation has no parent id and
	// the deployment rejects parentless listings.
	ErrParentRequired = errors.New("catalog: parent id is required")

	// ErrAlreadyExists is returned when a create collides with an existing key.
	ErrAlreadyExists = errors.New("catalog: entity already exists")

	// ErrStoreUnavailable is returned when DynamoDB cannot be reached in time.
	ErrStoreUnavailable = errors.New("catalog: store unavailable")
)

// WriteError reports a write that DynamoDB rejected or failed to apply.
// It unwraps to the underlying cause, so errors.Is(err, ErrStoreUnavailable)
// still holds for connectivity failures during a write.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("catalog: write failed (%s): %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError reports whether err is or wraps a *WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
