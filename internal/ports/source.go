package ports

import (
	"context"
	"io"

	"forensdesk/internal/domain"
)

// EvidenceSource fetches an image from where it was collected
type EvidenceSource interface {
	// Scheme is the reference prefix handled by the source ("file", "webdav", "s3")
	Scheme() string

	// Fetch opens the referenced image and returns its base name
	Fetch(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

// EvidenceAcquirer copies images into local storage for registration
type EvidenceAcquirer interface {
	// Acquire fetches ref through the EvidenceSource owning its scheme
	Acquire(ctx context.Context, ref string) (*domain.Acquisition, error)

	// Store saves an uploaded body under name
	Store(ctx context.Context, name string, body io.Reader) (*domain.Acquisition, error)
}
