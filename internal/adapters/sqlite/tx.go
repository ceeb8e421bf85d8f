package sqlite

import (
	"context"
	"database/sql"

	"forensdesk/internal/domain"
)

// auditTx appends events inside one transaction
type auditTx struct {
	tx *sql.Tx
}

func (a *Audit) beginTx(ctx context.Context) (*auditTx, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &auditTx{tx: tx}, nil
}

// LastDigest returns the digest at the head of the chain, empty when the
// trail is empty
func (t *auditTx) LastDigest() (string, error) {
	var digest string
	err := t.tx.QueryRow(`SELECT digest FROM events ORDER BY id DESC LIMIT 1`).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return digest, err
}

// Insert writes one event
func (t *auditTx) Insert(e domain.AuditEvent) error {
	_, err := t.tx.Exec(`
		INSERT INTO events (run, at, action, evidence_id, session, detail, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Run, e.Time.UTC().UnixNano(), string(e.Action), e.EvidenceID, e.Session, e.Detail, e.Digest)
	return err
}

// Commit commits the transaction
func (t *auditTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *auditTx) Rollback() error {
	return t.tx.Rollback()
}
