package application

import (
	"errors"
	"fmt"

	"forensdesk/internal/ports"
)

// Sentinel errors for common conditions
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = ports.ErrNotFound
	ErrBackendUnavailable = ports.ErrBackendUnavailable
	ErrConstructionFailed = errors.New("capability construction failed")
	ErrEvidenceClosed     = errors.New("evidence closed")
	ErrUnknownEvidence    = errors.New("unknown evidence")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConstructionError reports that no capability could be built for an image
type ConstructionError struct {
	Path    string
	Backend string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot open %s with %s: %v", e.Path, e.Backend, e.Err)
}

func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstructionFailed
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
