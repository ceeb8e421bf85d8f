package commands

import (
	"context"
	"fmt"
	"io"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

// AcquireResult contains the stored image, its registration and, when
// requested, a session on it
type AcquireResult struct {
	EvidenceID  string                  `json:"evidence_id"`
	Acquisition *domain.Acquisition     `json:"acquisition"`
	Session     *application.OpenResult `json:"session,omitempty"`
}

// AcquireEvidenceCommand fetches an image from a source, registers it with
// its digest and optionally opens a session
type AcquireEvidenceCommand struct {
	ws          *application.Workspace
	acquirer    ports.EvidenceAcquirer
	Ref         string
	OpenSession bool
}

// NewAcquireEvidenceCommand creates a new AcquireEvidenceCommand
func NewAcquireEvidenceCommand(ws *application.Workspace, acquirer ports.EvidenceAcquirer, ref string, openSession bool) *AcquireEvidenceCommand {
	return &AcquireEvidenceCommand{
		ws:          ws,
		acquirer:    acquirer,
		Ref:         ref,
		OpenSession: openSession,
	}
}

// Validate checks that a source reference was given
func (c *AcquireEvidenceCommand) Validate() error {
	return application.ValidateRequired("ref", c.Ref)
}

// Execute runs the acquisition
func (c *AcquireEvidenceCommand) Execute(ctx context.Context) (*AcquireResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	acq, err := c.acquirer.Acquire(ctx, c.Ref)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s: %w", c.Ref, err)
	}
	return registerAcquired(ctx, c.ws, acq, c.OpenSession)
}

// UploadEvidenceCommand stores an uploaded image, registers it and
// optionally opens a session
type UploadEvidenceCommand struct {
	ws          *application.Workspace
	acquirer    ports.EvidenceAcquirer
	FileName    string
	Body        io.Reader
	OpenSession bool
}

// NewUploadEvidenceCommand creates a new UploadEvidenceCommand
func NewUploadEvidenceCommand(ws *application.Workspace, acquirer ports.EvidenceAcquirer, fileName string, body io.Reader, openSession bool) *UploadEvidenceCommand {
	return &UploadEvidenceCommand{
		ws:          ws,
		acquirer:    acquirer,
		FileName:    fileName,
		Body:        body,
		OpenSession: openSession,
	}
}

// Validate applies the upload extension allow-list
func (c *UploadEvidenceCommand) Validate() error {
	if err := application.ValidateRequired("file", c.FileName); err != nil {
		return err
	}
	return application.ValidateEvidenceFile("file", c.FileName)
}

// Execute stores and registers the upload
func (c *UploadEvidenceCommand) Execute(ctx context.Context) (*AcquireResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	acq, err := c.acquirer.Store(ctx, c.FileName, c.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	return registerAcquired(ctx, c.ws, acq, c.OpenSession)
}

func registerAcquired(ctx context.Context, ws *application.Workspace, acq *domain.Acquisition, open bool) (*AcquireResult, error) {
	reg := NewRegisterEvidenceCommand(ws, acq.Path)
	reg.SHA512 = acq.SHA512
	registered, err := reg.Execute(ctx)
	if err != nil {
		return nil, err
	}

	result := &AcquireResult{EvidenceID: registered.ID, Acquisition: acq}
	if !open {
		return result, nil
	}

	opened, err := NewOpenSessionCommand(ws, registered.ID).Execute(ctx)
	if err != nil {
		return nil, err
	}
	result.Session = opened
	return result, nil
}
