package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
	"forensdesk/internal/metrics"
)

// RegisterResult contains the identifier of newly registered evidence
type RegisterResult struct {
	ID      string `json:"evidence_id"`
	Message string `json:"message"`
}

// RegisterEvidenceCommand registers an image that is already stored
type RegisterEvidenceCommand struct {
	ws     *application.Workspace
	Path   string
	SHA512 string
}

// NewRegisterEvidenceCommand creates a new RegisterEvidenceCommand
func NewRegisterEvidenceCommand(ws *application.Workspace, path string) *RegisterEvidenceCommand {
	return &RegisterEvidenceCommand{ws: ws, Path: path}
}

// Validate checks that a path was given. Its format and existence are
// left to the upload boundary and the image backend.
func (c *RegisterEvidenceCommand) Validate() error {
	return application.ValidateRequired("path", c.Path)
}

// Execute registers the evidence
func (c *RegisterEvidenceCommand) Execute(ctx context.Context) (*RegisterResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	id := c.ws.Registry.RegisterWithDigest(c.Path, c.SHA512)
	metrics.RecordEvidenceRegistered()
	c.ws.Logger.Info("evidence registered", zap.String("evidence_id", id), zap.String("path", c.Path))

	detail := "path=" + c.Path
	if c.SHA512 != "" {
		detail += " sha512=" + c.SHA512
	}
	c.ws.Record(ctx, domain.AuditEvent{
		Action:     domain.AuditEvidenceRegistered,
		EvidenceID: id,
		Detail:     detail,
	})

	return &RegisterResult{
		ID:      id,
		Message: fmt.Sprintf("Registered evidence: %s %s", id, c.Path),
	}, nil
}

// CloseResult reports what closing evidence affected
type CloseResult struct {
	ID                  string   `json:"evidence_id"`
	InvalidatedSessions []string `json:"-"`
	Message             string   `json:"message"`
}

// CloseEvidenceCommand closes evidence and ends all of its sessions
type CloseEvidenceCommand struct {
	ws         *application.Workspace
	EvidenceID string
}

// NewCloseEvidenceCommand creates a new CloseEvidenceCommand
func NewCloseEvidenceCommand(ws *application.Workspace, evidenceID string) *CloseEvidenceCommand {
	return &CloseEvidenceCommand{ws: ws, EvidenceID: evidenceID}
}

// Validate checks the evidence identifier
func (c *CloseEvidenceCommand) Validate() error {
	if err := application.ValidateRequired("evidenceID", c.EvidenceID); err != nil {
		return err
	}
	return application.ValidateEvidenceID("evidenceID", c.EvidenceID)
}

// Execute closes the evidence. Closing twice succeeds; unknown evidence
// fails with ErrUnknownEvidence.
func (c *CloseEvidenceCommand) Execute(ctx context.Context) (*CloseResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if !c.ws.Registry.Close(c.EvidenceID) {
		return nil, fmt.Errorf("%s: %w", c.EvidenceID, application.ErrUnknownEvidence)
	}

	tokens, err := c.ws.Sessions.InvalidateEvidence(c.EvidenceID)
	if err != nil {
		c.ws.Logger.Warn("closing evidence sessions", zap.String("evidence_id", c.EvidenceID), zap.Error(err))
	}

	c.ws.Record(ctx, domain.AuditEvent{
		Action:     domain.AuditEvidenceClosed,
		EvidenceID: c.EvidenceID,
		Detail:     fmt.Sprintf("sessions=%d", len(tokens)),
	})
	for _, token := range tokens {
		c.ws.Record(ctx, domain.AuditEvent{
			Action:     domain.AuditSessionInvalidated,
			EvidenceID: c.EvidenceID,
			Session:    domain.ShortToken(token),
			Detail:     "evidence closed",
		})
	}

	return &CloseResult{
		ID:                  c.EvidenceID,
		InvalidatedSessions: tokens,
		Message:             fmt.Sprintf("Closed evidence: %s (%d sessions ended)", c.EvidenceID, len(tokens)),
	}, nil
}

// ListEvidenceCommand lists registered evidence
type ListEvidenceCommand struct {
	ws *application.Workspace
}

// NewListEvidenceCommand creates a new ListEvidenceCommand
func NewListEvidenceCommand(ws *application.Workspace) *ListEvidenceCommand {
	return &ListEvidenceCommand{ws: ws}
}

// Execute returns every record ordered by ID
func (c *ListEvidenceCommand) Execute(_ context.Context) ([]domain.EvidenceRecord, error) {
	return c.ws.Registry.List(), nil
}

// AuditTrailCommand returns custody events. It reads the current run
// unless another run is chosen with InRun.
type AuditTrailCommand struct {
	ws         *application.Workspace
	Run        string
	EvidenceID string
}

// NewAuditTrailCommand creates a new AuditTrailCommand over the current
// run. An empty ID returns every event of the run.
func NewAuditTrailCommand(ws *application.Workspace, evidenceID string) *AuditTrailCommand {
	return &AuditTrailCommand{ws: ws, Run: ws.Registry.RunID(), EvidenceID: evidenceID}
}

// InRun reads run instead of the current one. An empty run reads every
// run, which is only allowed without an evidence ID.
func (c *AuditTrailCommand) InRun(run string) *AuditTrailCommand {
	c.Run = run
	return c
}

// Validate checks the evidence identifier and that it is scoped to a run
func (c *AuditTrailCommand) Validate() error {
	if c.EvidenceID == "" {
		return nil
	}
	if err := application.ValidateEvidenceID("evidenceID", c.EvidenceID); err != nil {
		return err
	}
	return application.ValidateRequired("run", c.Run)
}

// Execute reads the trail
func (c *AuditTrailCommand) Execute(ctx context.Context) ([]domain.AuditEvent, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.ws.Audit == nil {
		return []domain.AuditEvent{}, nil
	}
	events, err := c.ws.Audit.List(ctx, domain.AuditQuery{Run: c.Run, EvidenceID: c.EvidenceID})
	if err != nil {
		return nil, fmt.Errorf("failed to read audit trail: %w", err)
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return events, nil
}
