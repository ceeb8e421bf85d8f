package views

import (
	"context"

	"forensdesk/internal/application/commands"
	"forensdesk/internal/domain"
)

// Inspector is what the views read from: one open session on one image
type Inspector interface {
	// Describe names the evidence and backend for the title bar
	Describe() string
	// Warning is the degraded-backend warning, empty for a real backend
	Warning() string

	Partitions(ctx context.Context) (*commands.PartitionsResult, error)
	List(ctx context.Context, startOffset int64, inode *uint64) ([]domain.DirectoryEntry, error)
	View(ctx context.Context, startOffset int64, inode uint64) (*commands.ViewResult, error)
	Carve(ctx context.Context, fileType string) ([]domain.CarvedFile, error)
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)

	// CloseEvidence closes the evidence, invalidating the session
	CloseEvidence(ctx context.Context) (*commands.CloseResult, error)
}
