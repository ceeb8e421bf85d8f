package ports

import (
	"context"

	"forensdesk/internal/domain"
)

// AuditLog persists the chain-of-custody trail
type AuditLog interface {
	Record(ctx context.Context, event domain.AuditEvent) error

	// List returns the events q selects, oldest first
	List(ctx context.Context, q domain.AuditQuery) ([]domain.AuditEvent, error)

	Close() error
}
