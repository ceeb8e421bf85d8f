package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

// Workspace bundles the process-wide registry and session table with the
// collaborators every command shares
type Workspace struct {
	Registry *Registry
	Sessions *Sessions
	Audit    ports.AuditLog // nil disables the custody trail
	Logger   *zap.Logger
}

// NewWorkspace wires a registry and session table. Sessions only issue
// tokens for evidence the registry still holds open. A nil logger is
// replaced with a no-op logger.
func NewWorkspace(registry *Registry, sessions *Sessions, audit ports.AuditLog, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	WithEvidenceCheck(registry.IsOpen)(sessions)
	return &Workspace{
		Registry: registry,
		Sessions: sessions,
		Audit:    audit,
		Logger:   logger,
	}
}

// Record appends a custody event stamped with the registry's run. Audit
// failures are logged and swallowed so they never fail the operation
// being audited.
func (w *Workspace) Record(ctx context.Context, event domain.AuditEvent) {
	if w.Audit == nil {
		return
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	event.Run = w.Registry.RunID()
	if err := w.Audit.Record(ctx, event); err != nil {
		w.Logger.Warn("failed to record audit event",
			zap.String("action", string(event.Action)),
			zap.String("evidence_id", event.EvidenceID),
			zap.Error(err),
		)
	}
}

// Close releases every session and the audit log
func (w *Workspace) Close() error {
	err := w.Sessions.CloseAll()
	if w.Audit != nil {
		if aerr := w.Audit.Close(); aerr != nil && err == nil {
			err = aerr
		}
	}
	return err
}
