package ports

import (
	"context"
	"errors"

	"forensdesk/internal/domain"
)

// ErrBackendUnavailable signals that the parsing backend itself is missing
// (tools not installed, library not loadable) as opposed to a bad image.
// Openers wrap it so session code can decide on a fallback.
var ErrBackendUnavailable = errors.New("image backend unavailable")

// ErrNotFound is returned by capabilities for an inode or directory that
// does not exist in the image
var ErrNotFound = errors.New("not found")

// ImageCapability is a parsed, read-only view of one evidence image.
// Implementations must be safe for concurrent use.
type ImageCapability interface {
	// ListPartitions enumerates the partition table; a bare file system
	// image reports a single partition at offset 0
	ListPartitions(ctx context.Context) ([]domain.Partition, error)

	// IsWiped reports whether the image holds no recognizable structure
	IsWiped() bool

	// ListDirectory lists a directory of the file system at startOffset
	// (in sectors). A nil inode means the root directory.
	ListDirectory(ctx context.Context, startOffset int64, inode *uint64) ([]domain.DirectoryEntry, error)

	// ReadFile returns the full content of a file. A nil result with a nil
	// error means the inode could not be resolved.
	ReadFile(ctx context.Context, inode uint64, startOffset int64) (*domain.FileContent, error)

	// DetectType classifies raw bytes. It never fails.
	DetectType(content []byte) domain.FileType

	// Carve recovers files from unallocated space. fileType "all" matches
	// every signature.
	Carve(ctx context.Context, fileType string) ([]domain.CarvedFile, error)

	// Search finds files or raw locations matching query; "" is legal
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)

	// Backend names the implementation ("sleuthkit", "demo")
	Backend() string

	Close() error
}

// CapabilityOpener builds an ImageCapability for an image path
type CapabilityOpener interface {
	Open(ctx context.Context, path string) (ImageCapability, error)
	Name() string
}

// OpenerFunc adapts a function to CapabilityOpener
type OpenerFunc struct {
	BackendName string
	Fn          func(ctx context.Context, path string) (ImageCapability, error)
}

func (o OpenerFunc) Open(ctx context.Context, path string) (ImageCapability, error) {
	return o.Fn(ctx, path)
}

func (o OpenerFunc) Name() string {
	return o.BackendName
}
