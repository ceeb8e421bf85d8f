// Package custody selects the audit trail backend from a DSN
package custody

import (
	"context"
	"strings"

	"forensdesk/internal/adapters/postgres"
	"forensdesk/internal/adapters/sqlite"
	"forensdesk/internal/ports"
)

// Disabled is the DSN that turns the trail off
const Disabled = "none"

// Open returns the trail named by dsn: postgres:// and postgresql:// URLs
// select PostgreSQL, anything else is a SQLite path. A disabled trail is
// returned as nil.
func Open(ctx context.Context, dsn string) (ports.AuditLog, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "" || dsn == Disabled:
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		log, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return log, nil
	default:
		log, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		return log, nil
	}
}
