package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced entity does not exist or is
// hidden by soft-delete.
var ErrNotFound = errors.New("not found")

// ValidationError is a blocking, user-correctable input failure: a wizard
// step guard failure or a transformation rule violation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrNoFieldsSelected is returned when a non-skipped transformation has no
// selected fields.
var ErrNoFieldsSelected = &ValidationError{Reason: "transformation requires at least one selected field"}

// InvalidDerivedColumnError reports the first derived column failing the
// non-empty name/expression contract.
type InvalidDerivedColumnError struct {
	Index int
	Field string
}

func (e *InvalidDerivedColumnError) Error() string {
	return fmt.Sprintf("derived column %d: %s must not be empty", e.Index, e.Field)
}

// StateConflictError is returned when a transition is not legal from the
// entity's current state, e.g. starting a run on an already-running dataset
// or purging a non-deleted entity.
type StateConflictError struct {
	Entity string
	State  string
	Op     string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s in state %q: cannot %s", e.Entity, e.State, e.Op)
}

// PartialCommitError reports a two-entity wizard commit that only half
// succeeded. DatasetID names the half that was created so the caller can
// retry the transformation or reconcile manually.
type PartialCommitError struct {
	DatasetID uuid.UUID
	Err       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("dataset %s created but transformation failed: %v", e.DatasetID, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

// StoreError wraps a transient infrastructure failure. It is propagated to
// the caller as retryable; the core never retries silently.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
