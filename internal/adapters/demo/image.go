// Package demo provides a synthetic image used when no real parsing
// backend is available, and as a fixture in tests.
package demo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

// BackendName identifies demo sessions
const BackendName = "demo"

const (
	inodeFile    = 12345
	inodeFolder  = 12346
	inodeCarved  = 12347
	inodeHit     = 12348
	inodeReadme  = 12350
	inodeOrphans = 12351
)

var fixtureTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// FileContent is the body of demo_file.txt
var FileContent = []byte("This is a demo file content for testing purposes.")

type node struct {
	entry   domain.DirectoryEntry
	content []byte
}

// Image is a fixed synthetic file system
type Image struct {
	path     string
	wiped    bool
	dirs     map[uint64][]uint64
	nodes    map[uint64]node
	rootList []uint64
}

// Option configures an Image
type Option func(*Image)

// Wiped makes the image report no recoverable structure
func Wiped() Option {
	return func(i *Image) { i.wiped = true }
}

// New builds the demo image. path is only kept for reporting.
func New(path string, opts ...Option) *Image {
	img := &Image{path: path}
	for _, opt := range opts {
		opt(img)
	}

	ts := domain.UniformTimestamps(fixtureTime)
	file := func(name string, inode uint64, size string, content []byte) node {
		return node{
			entry: domain.DirectoryEntry{
				Name: name, InodeNumber: inode, Size: size, Timestamps: ts,
			},
			content: content,
		}
	}
	dir := func(name string, inode uint64) node {
		return node{entry: domain.DirectoryEntry{
			Name: name, IsDirectory: true, InodeNumber: inode, Size: "0 B", Timestamps: ts,
		}}
	}

	img.nodes = map[uint64]node{
		inodeFile:    file("demo_file.txt", inodeFile, "1.2 KB", FileContent),
		inodeFolder:  dir("demo_folder", inodeFolder),
		inodeReadme:  file("readme.txt", inodeReadme, "38 B", []byte("Synthetic folder content for browsing.")),
		inodeOrphans: dir("$OrphanFiles", inodeOrphans),
		inodeCarved:  file("demo_carved_file.txt", inodeCarved, "512 B", []byte("Recovered demo content.")),
		inodeHit:     file("demo_search_hit.txt", inodeHit, "256 B", []byte("Demo keyword hit.")),
	}
	img.rootList = []uint64{inodeFile, inodeFolder, inodeOrphans}
	img.dirs = map[uint64][]uint64{
		inodeFolder:  {inodeReadme},
		inodeOrphans: {inodeCarved, inodeHit},
	}
	return img
}

func (i *Image) ListPartitions(_ context.Context) ([]domain.Partition, error) {
	if i.wiped {
		return nil, nil
	}
	return []domain.Partition{
		{Index: 1, Label: "Demo Partition", StartOffset: 2048, Size: 1000000},
	}, nil
}

func (i *Image) IsWiped() bool {
	return i.wiped
}

func (i *Image) ListDirectory(_ context.Context, _ int64, inode *uint64) ([]domain.DirectoryEntry, error) {
	if i.wiped {
		return nil, nil
	}

	children := i.rootList
	if inode != nil {
		var ok bool
		children, ok = i.dirs[*inode]
		if !ok {
			return nil, fmt.Errorf("directory %d: %w", *inode, ports.ErrNotFound)
		}
	}

	entries := make([]domain.DirectoryEntry, 0, len(children))
	for _, child := range children {
		entries = append(entries, i.nodes[child].entry)
	}
	return entries, nil
}

func (i *Image) ReadFile(_ context.Context, inode uint64, _ int64) (*domain.FileContent, error) {
	if i.wiped {
		return nil, nil
	}
	n, ok := i.nodes[inode]
	if !ok || n.entry.IsDirectory {
		return nil, nil
	}
	return &domain.FileContent{
		Data: n.content,
		Metadata: domain.FileMetadata{
			Inode: inode,
			Name:  n.entry.Name,
			Size:  int64(len(n.content)),
		},
	}, nil
}

func (i *Image) DetectType(_ []byte) domain.FileType {
	return domain.FileType{Type: "text", Extension: "txt", Description: "Text File"}
}

func (i *Image) Carve(_ context.Context, fileType string) ([]domain.CarvedFile, error) {
	if i.wiped {
		return nil, nil
	}
	switch strings.ToLower(fileType) {
	case "all", "text", "txt":
	default:
		return nil, nil
	}

	n := i.nodes[inodeCarved]
	return []domain.CarvedFile{{
		DirectoryEntry: n.entry,
		Path:           "/demo_carved_file.txt",
		Type:           "text",
		Extension:      "txt",
		Description:    "Text File",
	}}, nil
}

func (i *Image) Search(_ context.Context, query string) ([]domain.SearchResult, error) {
	if i.wiped || query == "" {
		return nil, nil
	}
	name := fmt.Sprintf("demo_search_%s.txt", query)
	return []domain.SearchResult{{
		Name:       name,
		Path:       "/" + name,
		Size:       "256 B",
		InodeItem:  fmt.Sprintf("%d", inodeHit),
		Timestamps: domain.UniformTimestamps(fixtureTime),
	}}, nil
}

func (i *Image) Backend() string {
	return BackendName
}

func (i *Image) Close() error {
	return nil
}

// Opener builds demo images for any path
type Opener struct {
	Options []Option
}

func (o Opener) Open(_ context.Context, path string) (ports.ImageCapability, error) {
	return New(path, o.Options...), nil
}

func (o Opener) Name() string {
	return BackendName
}
