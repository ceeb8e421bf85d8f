// Package postgres provides a PostgreSQL-backed custody trail for
// deployments where several servers share one audit log.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

// appendLockKey is the advisory lock that serializes appends across servers
const appendLockKey = 0x666f72656e73

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id BIGSERIAL PRIMARY KEY,
	at TIMESTAMPTZ NOT NULL,
	at_nanos BIGINT NOT NULL,
	action TEXT NOT NULL,
	evidence_id TEXT NOT NULL,
	session TEXT NOT NULL,
	detail TEXT NOT NULL,
	digest TEXT NOT NULL
);
ALTER TABLE audit_events ADD COLUMN IF NOT EXISTS run TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS idx_audit_events_evidence ON audit_events(evidence_id);
CREATE INDEX IF NOT EXISTS idx_audit_events_run ON audit_events(run, evidence_id);
`

// Audit is a PostgreSQL custody trail
type Audit struct {
	db *sql.DB
}

var _ ports.AuditLog = (*Audit)(nil)

// Open connects to databaseURL and creates the schema if needed
func Open(ctx context.Context, databaseURL string) (*Audit, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Audit{db: db}, nil
}

// Close closes the database connection
func (a *Audit) Close() error {
	return a.db.Close()
}

// Record appends one event, extending the digest chain
func (a *Audit) Record(ctx context.Context, e domain.AuditEvent) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return fmt.Errorf("lock trail: %w", err)
	}

	var prev string
	err = tx.QueryRowContext(ctx, `SELECT digest FROM audit_events ORDER BY id DESC LIMIT 1`).Scan(&prev)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read chain head: %w", err)
	}
	e.Digest = domain.ChainDigest(prev, e)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (
			run,
			at,
			at_nanos,
			action,
			evidence_id,
			session,
			detail,
			digest
		) VALUES (
			$1,
			$2,
			$3,
			$4,
			$5,
			$6,
			$7,
			$8
		)`,
		e.Run,
		e.Time.UTC(),
		e.Time.UTC().UnixNano(),
		string(e.Action),
		e.EvidenceID,
		e.Session,
		e.Detail,
		e.Digest,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", e.Action, err)
	}
	return tx.Commit()
}

// List returns matching events in recording order. Empty query fields
// match everything.
func (a *Audit) List(ctx context.Context, q domain.AuditQuery) ([]domain.AuditEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, run, at_nanos, action, evidence_id, session, detail, digest
		FROM audit_events
		WHERE ($1 = '' OR run = $1) AND ($2 = '' OR evidence_id = $2)
		ORDER BY id`, q.Run, q.EvidenceID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		var nanos int64
		var action string
		if err := rows.Scan(&e.ID, &e.Run, &nanos, &action, &e.EvidenceID, &e.Session, &e.Detail, &e.Digest); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Time = time.Unix(0, nanos).UTC()
		e.Action = domain.AuditAction(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
