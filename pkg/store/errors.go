package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrCycle               = errors.New("folder cannot be moved into its own subtree")
	ErrMaxDepth            = errors.New("maximum folder depth exceeded")
	ErrPersistence         = errors.New("persistence failed")
	ErrRenderTargetMissing = errors.New("render target missing")
)

// ValidationError reports bad input such as an empty or duplicate name.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports ids that do not exist.
type NotFoundError struct {
	Kind string
	IDs  []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s %q not found", e.Kind, e.IDs[0])
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, strings.Join(e.IDs, ", "))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a failed load or save. The in-memory state is kept
// and the next successful save includes it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s config: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// RenderTargetMissing is returned when the host has no drawable surface for
// a node yet. It resolves on a later paint and is never shown to the user.
type RenderTargetMissing struct {
	InstanceID string
}

func (e *RenderTargetMissing) Error() string {
	return fmt.Sprintf("no render target for node %s", e.InstanceID)
}

func (e *RenderTargetMissing) Is(target error) bool { return target == ErrRenderTargetMissing }

// UserMessage returns actionable text for a notification.
func UserMessage(action string, err error) string {
	var ve *ValidationError
	var nf *NotFoundError
	var pe *PersistenceError
	switch {
	case errors.As(err, &ve):
		return fmt.Sprintf("Could not %s: %s", action, ve.Error())
	case errors.As(err, &nf):
		return fmt.Sprintf("Could not %s: %s. It may have been deleted.", action, nf.Error())
	case errors.As(err, &pe):
		return fmt.Sprintf("Could not save after %s. Your change is kept and will be saved with the next edit.", action)
	default:
		return fmt.Sprintf("Could not %s.", action)
	}
}
