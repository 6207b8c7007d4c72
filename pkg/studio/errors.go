package studio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds
var (
	// ErrValidation indicates malformed or missing input
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateKey indicates a unique constraint violation
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound indicates an unknown record id
	ErrNotFound = errors.New("record not found")

	// ErrStorageIO indicates a media write or delete failure
	ErrStorageIO = errors.New("media storage failure")

	// ErrMediaNotFound indicates the referenced media object does not exist
	ErrMediaNotFound = errors.New("media not found")

	// ErrNotification indicates the notifier failed to deliver
	ErrNotification = errors.New("notification failed")
)

// ValidationError reports the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// EntityError represents an error related to an entity store operation
type EntityError struct {
	Kind Kind
	ID   uuid.UUID
	Op   string
	Err  error
}

func (e *EntityError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s operation %s failed: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s operation %s failed for %s: %v", e.Kind, e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to media storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

// Is reports StorageError as ErrStorageIO in addition to its cause.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageIO
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotificationError is returned by SubmitContact when the contact was saved
// but the notifier failed. ContactID identifies the saved record.
type NotificationError struct {
	ContactID uuid.UUID
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("contact %s saved but notification failed: %v", e.ContactID, e.Err)
}

func (e *NotificationError) Is(target error) bool {
	return target == ErrNotification
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
