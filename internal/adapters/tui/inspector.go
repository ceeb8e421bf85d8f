package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"forensdesk/internal/application"
	"forensdesk/internal/application/commands"
	"forensdesk/internal/domain"
)

// SessionInspector serves the views from one workspace session. Every
// call goes through the same commands as the CLI and HTTP API, so reads
// land in the custody trail.
type SessionInspector struct {
	ws     *application.Workspace
	opened *commands.OpenImageResult
	path   string
}

// OpenInspector registers path and opens a session on it
func OpenInspector(ctx context.Context, ws *application.Workspace, path string) (*SessionInspector, error) {
	opened, err := commands.OpenImage(ctx, ws, path)
	if err != nil {
		return nil, err
	}
	return &SessionInspector{ws: ws, opened: opened, path: path}, nil
}

// EvidenceID returns the ID the image was registered under
func (s *SessionInspector) EvidenceID() string {
	return s.opened.EvidenceID
}

func (s *SessionInspector) Describe() string {
	return fmt.Sprintf("%s  %s  (%s)", s.opened.EvidenceID, filepath.Base(s.path), s.opened.Backend)
}

func (s *SessionInspector) Warning() string {
	if !s.opened.Degraded {
		return ""
	}
	return s.opened.Warning
}

func (s *SessionInspector) Partitions(ctx context.Context) (*commands.PartitionsResult, error) {
	return commands.NewListPartitionsCommand(s.ws, s.opened.Token).Execute(ctx)
}

func (s *SessionInspector) List(ctx context.Context, startOffset int64, inode *uint64) ([]domain.DirectoryEntry, error) {
	return commands.NewListDirectoryCommand(s.ws, s.opened.Token, startOffset, inode).Execute(ctx)
}

func (s *SessionInspector) View(ctx context.Context, startOffset int64, inode uint64) (*commands.ViewResult, error) {
	return commands.NewViewFileCommand(s.ws, s.opened.Token, inode, startOffset).Execute(ctx)
}

func (s *SessionInspector) Carve(ctx context.Context, fileType string) ([]domain.CarvedFile, error) {
	return commands.NewCarveCommand(s.ws, s.opened.Token, fileType).Execute(ctx)
}

func (s *SessionInspector) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return commands.NewSearchCommand(s.ws, s.opened.Token, query).Execute(ctx)
}

func (s *SessionInspector) CloseEvidence(ctx context.Context) (*commands.CloseResult, error) {
	return commands.NewCloseEvidenceCommand(s.ws, s.opened.EvidenceID).Execute(ctx)
}
