package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"forensdesk/internal/application"
	"forensdesk/internal/domain"
	"forensdesk/internal/metrics"
)

// Query operation names used in metrics and logs
const (
	OpPartitions = "partitions"
	OpList       = "list"
	OpRead       = "read"
	OpView       = "view"
	OpPreview    = "preview"
	OpCarve      = "carve"
	OpSearch     = "search"
)

// session resolves token. Unknown tokens fail with ErrInvalidToken,
// whatever other parameters accompany them.
func session(ws *application.Workspace, token string) (application.SessionInfo, error) {
	return ws.Sessions.Lookup(token)
}

// observe records the outcome of one query
func observe(ws *application.Workspace, op, token string, start time.Time, err error) {
	metrics.RecordQuery(op, time.Since(start), err)
	if err == nil {
		return
	}
	level := ws.Logger.Warn
	if errors.Is(err, application.ErrInvalidToken) || errors.Is(err, application.ErrNotFound) {
		level = ws.Logger.Debug
	}
	level("query failed",
		zap.String("op", op),
		zap.String("session", domain.ShortToken(token)),
		zap.Error(err),
	)
}

// audit records a query-level custody event
func audit(ctx context.Context, ws *application.Workspace, info application.SessionInfo, action domain.AuditAction, detail string) {
	ws.Record(ctx, domain.AuditEvent{
		Action:     action,
		EvidenceID: info.EvidenceID,
		Session:    domain.ShortToken(info.Token),
		Detail:     detail,
	})
}
