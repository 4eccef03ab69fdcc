package audit

import "fmt"

// StorageError is returned when a storage backend operation fails.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s %s failed: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new storage error.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// RecorderError is returned when a record cannot be handed to the recorder.
type RecorderError struct {
	RecordID string
	Cause    error
}

func (e *RecorderError) Error() string {
	return fmt.Sprintf("audit recorder failed for record %s: %v", e.RecordID, e.Cause)
}

func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// NewRecorderError creates a new recorder error.
func NewRecorderError(recordID string, cause error) *RecorderError {
	return &RecorderError{
		RecordID: recordID,
		Cause:    cause,
	}
}

// RetentionError is returned when pruning fails.
type RetentionError struct {
	Phase string
	Cause error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("audit retention (%s) failed: %v", e.Phase, e.Cause)
}

func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new retention error. phase is "age" or "count".
func NewRetentionError(phase string, cause error) *RetentionError {
	return &RetentionError{
		Phase: phase,
		Cause: cause,
	}
}
