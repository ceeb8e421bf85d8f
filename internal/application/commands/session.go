package commands

import (
	"context"
	"fmt"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
)

// OpenSessionCommand opens a browsing session on registered evidence
type OpenSessionCommand struct {
	ws         *application.Workspace
	EvidenceID string
}

// NewOpenSessionCommand creates a new OpenSessionCommand
func NewOpenSessionCommand(ws *application.Workspace, evidenceID string) *OpenSessionCommand {
	return &OpenSessionCommand{ws: ws, EvidenceID: evidenceID}
}

// Validate checks the evidence identifier
func (c *OpenSessionCommand) Validate() error {
	if err := application.ValidateRequired("evidenceID", c.EvidenceID); err != nil {
		return err
	}
	return application.ValidateEvidenceID("evidenceID", c.EvidenceID)
}

// Execute opens the session. Closed evidence fails with ErrEvidenceClosed.
// A degraded open succeeds and carries a warning.
func (c *OpenSessionCommand) Execute(ctx context.Context) (*application.OpenResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	record, ok := c.ws.Registry.Resolve(c.EvidenceID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", c.EvidenceID, application.ErrUnknownEvidence)
	}

	result, err := c.ws.Sessions.Open(ctx, record)
	if err != nil {
		return nil, err
	}

	event := domain.AuditEvent{
		Action:     domain.AuditSessionOpened,
		EvidenceID: record.ID,
		Session:    domain.ShortToken(result.Token),
		Detail:     "backend=" + result.Backend,
	}
	if result.Degraded {
		event.Action = domain.AuditSessionDegraded
		event.Detail += " warning=" + result.Warning
	}
	c.ws.Record(ctx, event)

	return &result, nil
}

// InvalidateSessionCommand ends one session
type InvalidateSessionCommand struct {
	ws    *application.Workspace
	Token string
}

// NewInvalidateSessionCommand creates a new InvalidateSessionCommand
func NewInvalidateSessionCommand(ws *application.Workspace, token string) *InvalidateSessionCommand {
	return &InvalidateSessionCommand{ws: ws, Token: token}
}

// Execute invalidates the token. Unknown tokens fail with ErrInvalidToken.
func (c *InvalidateSessionCommand) Execute(ctx context.Context) error {
	info, err := c.ws.Sessions.Lookup(c.Token)
	if err != nil {
		return err
	}
	if err := c.ws.Sessions.Invalidate(c.Token); err != nil {
		return err
	}
	audit(ctx, c.ws, info, domain.AuditSessionInvalidated, "requested")
	return nil
}

// OpenImageResult is the outcome of registering and opening an image in one step
type OpenImageResult struct {
	EvidenceID string `json:"evidence_id"`
	application.OpenResult
}

// OpenImage registers path and opens a session on it. Process-scoped
// surfaces such as the CLI and TUI use it on startup.
func OpenImage(ctx context.Context, ws *application.Workspace, path string) (*OpenImageResult, error) {
	reg, err := NewRegisterEvidenceCommand(ws, path).Execute(ctx)
	if err != nil {
		return nil, err
	}
	opened, err := NewOpenSessionCommand(ws, reg.ID).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &OpenImageResult{EvidenceID: reg.ID, OpenResult: *opened}, nil
}
