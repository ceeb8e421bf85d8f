package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"forensdesk/internal/domain"
	"forensdesk/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "2"

// Audit implements ports.AuditLog using SQLite
type Audit struct {
	mu     sync.Mutex // serializes appends so the digest chain stays linear
	db     *sql.DB
	dbPath string
}

// Ensure Audit implements AuditLog
var _ ports.AuditLog = (*Audit)(nil)

// Open opens or creates the custody database. dsn is either a plain path
// or a "file:" URI.
func Open(dsn string) (*Audit, error) {
	dbPath := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dbPath, '?'); i >= 0 {
		dbPath = dbPath[:i]
	}
	if dbPath == "" {
		return nil, fmt.Errorf("empty audit database path")
	}

	if len(dbPath) > 0 && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	// WAL lets readers list the trail while a session appends
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA synchronous = FULL;

		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run TEXT NOT NULL DEFAULT '',
			at INTEGER NOT NULL,
			action TEXT NOT NULL,
			evidence_id TEXT NOT NULL,
			session TEXT NOT NULL,
			detail TEXT NOT NULL,
			digest TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_evidence ON events(evidence_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	a := &Audit{db: db, dbPath: dbPath}
	if err := a.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_events_run ON events(run, evidence_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return a, nil
}

// Path returns the database file location
func (a *Audit) Path() string {
	return a.dbPath
}

// Close closes the database connection
func (a *Audit) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Record appends one event to the trail
func (a *Audit) Record(ctx context.Context, event domain.AuditEvent) error {
	return a.Append(ctx, []domain.AuditEvent{event})
}

// Append writes events atomically, extending the digest chain
func (a *Audit) Append(ctx context.Context, events []domain.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.beginTx(ctx)
	if err != nil {
		return err
	}

	prev, err := tx.LastDigest()
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, e := range events {
		if e.Time.IsZero() {
			e.Time = time.Now()
		}
		e.Digest = domain.ChainDigest(prev, e)
		if err := tx.Insert(e); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record %s: %w", e.Action, err)
		}
		prev = e.Digest
	}
	return tx.Commit()
}

// List returns matching events in recording order. Empty query fields
// match everything.
func (a *Audit) List(ctx context.Context, q domain.AuditQuery) ([]domain.AuditEvent, error) {
	query := `SELECT id, run, at, action, evidence_id, session, detail, digest FROM events`
	var where []string
	var args []any
	if q.Run != "" {
		where = append(where, `run = ?`)
		args = append(args, q.Run)
	}
	if q.EvidenceID != "" {
		where = append(where, `evidence_id = ?`)
		args = append(args, q.EvidenceID)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(rows *sql.Rows) (domain.AuditEvent, error) {
	var e domain.AuditEvent
	var at int64
	var action string
	err := rows.Scan(&e.ID, &e.Run, &at, &action, &e.EvidenceID, &e.Session, &e.Detail, &e.Digest)
	if err != nil {
		return e, err
	}
	e.Time = time.Unix(0, at).UTC()
	e.Action = domain.AuditAction(action)
	return e, nil
}

// checkSchema stamps a fresh database, migrates a version 1 trail and
// refuses one written by an incompatible version. Version 1 events keep
// an empty run.
func (a *Audit) checkSchema() error {
	var version string
	err := a.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		_, err = a.db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
		if err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if version == "1" {
		return a.migrateRun()
	}
	if version != schemaVersion {
		return fmt.Errorf("audit database %s has schema version %s, want %s", a.dbPath, version, schemaVersion)
	}
	return nil
}

func (a *Audit) migrateRun() error {
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`ALTER TABLE events ADD COLUMN run TEXT NOT NULL DEFAULT ''`); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to migrate audit database: %w", err)
	}
	if _, err := tx.Exec(`UPDATE meta SET value = ? WHERE key = 'schema_version'`, schemaVersion); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update metadata: %w", err)
	}
	return tx.Commit()
}
