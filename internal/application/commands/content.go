package commands

import (
	"context"
	"fmt"
	"time"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
)

// ReadFileCommand retrieves the content of one inode
type ReadFileCommand struct {
	ws          *application.Workspace
	Token       string
	Inode       uint64
	StartOffset int64
}

// NewReadFileCommand creates a new ReadFileCommand
func NewReadFileCommand(ws *application.Workspace, token string, inode uint64, startOffset int64) *ReadFileCommand {
	return &ReadFileCommand{
		ws:          ws,
		Token:       token,
		Inode:       inode,
		StartOffset: startOffset,
	}
}

// Validate checks the read parameters
func (c *ReadFileCommand) Validate() error {
	return application.ValidateStartOffset(c.StartOffset)
}

// Execute reads the file. An inode the image cannot resolve fails with
// ErrNotFound.
func (c *ReadFileCommand) Execute(ctx context.Context) (content *domain.FileContent, err error) {
	defer func(start time.Time) { observe(c.ws, OpRead, c.Token, start, err) }(time.Now())

	info, err := session(c.ws, c.Token)
	if err != nil {
		return nil, err
	}
	return c.read(ctx, info)
}

func (c *ReadFileCommand) read(ctx context.Context, info application.SessionInfo) (*domain.FileContent, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	content, err := info.Capability.ReadFile(ctx, c.Inode, c.StartOffset)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, fmt.Errorf("inode %d at offset %d: %w", c.Inode, c.StartOffset, application.ErrNotFound)
	}

	audit(ctx, c.ws, info, domain.AuditFileRead,
		fmt.Sprintf("inode=%d offset=%d bytes=%d", c.Inode, c.StartOffset, len(content.Data)))
	return content, nil
}

// ViewResult is file content prepared for display
type ViewResult struct {
	domain.ContentView
	Inode uint64 `json:"inode"`
	Name  string `json:"name,omitempty"`
}

// ViewFileCommand reads a file and classifies it as text or hex
type ViewFileCommand struct {
	read ReadFileCommand
}

// NewViewFileCommand creates a new ViewFileCommand
func NewViewFileCommand(ws *application.Workspace, token string, inode uint64, startOffset int64) *ViewFileCommand {
	return &ViewFileCommand{read: *NewReadFileCommand(ws, token, inode, startOffset)}
}

// Execute reads and classifies the file
func (c *ViewFileCommand) Execute(ctx context.Context) (result *ViewResult, err error) {
	defer func(start time.Time) { observe(c.read.ws, OpView, c.read.Token, start, err) }(time.Now())

	info, err := session(c.read.ws, c.read.Token)
	if err != nil {
		return nil, err
	}
	content, err := c.read.read(ctx, info)
	if err != nil {
		return nil, err
	}
	return &ViewResult{
		ContentView: domain.ClassifyContent(content.Data),
		Inode:       c.read.Inode,
		Name:        content.Metadata.Name,
	}, nil
}

// PreviewResult adds the detected file type to a content view
type PreviewResult struct {
	ViewResult
	FileType domain.FileType `json:"file_type"`
}

// PreviewFileCommand reads a file, classifies it and detects its type
type PreviewFileCommand struct {
	read ReadFileCommand
}

// NewPreviewFileCommand creates a new PreviewFileCommand
func NewPreviewFileCommand(ws *application.Workspace, token string, inode uint64, startOffset int64) *PreviewFileCommand {
	return &PreviewFileCommand{read: *NewReadFileCommand(ws, token, inode, startOffset)}
}

// Execute reads the file and runs type detection on it
func (c *PreviewFileCommand) Execute(ctx context.Context) (result *PreviewResult, err error) {
	defer func(start time.Time) { observe(c.read.ws, OpPreview, c.read.Token, start, err) }(time.Now())

	info, err := session(c.read.ws, c.read.Token)
	if err != nil {
		return nil, err
	}
	content, err := c.read.read(ctx, info)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		ViewResult: ViewResult{
			ContentView: domain.ClassifyContent(content.Data),
			Inode:       c.read.Inode,
			Name:        content.Metadata.Name,
		},
		FileType: info.Capability.DetectType(content.Data),
	}, nil
}
