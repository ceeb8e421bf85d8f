package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// AuditAction names a chain-of-custody event
type AuditAction string

const (
	AuditEvidenceRegistered AuditAction = "evidence_registered"
	AuditEvidenceClosed     AuditAction = "evidence_closed"
	AuditSessionOpened      AuditAction = "session_opened"
	AuditSessionDegraded    AuditAction = "session_degraded"
	AuditSessionInvalidated AuditAction = "session_invalidated"
	AuditFileRead           AuditAction = "file_read"
	AuditCarve              AuditAction = "carve"
	AuditSearch             AuditAction = "search"
)

// AuditEvent is one entry of the custody trail
type AuditEvent struct {
	ID         int64       `json:"id"`
	Run        string      `json:"run"` // Registry run that recorded the event; evidence IDs restart in every run
	Time       time.Time   `json:"time"`
	Action     AuditAction `json:"action"`
	EvidenceID string      `json:"evidence_id"`
	Session    string      `json:"session,omitempty"` // ShortToken of the session, empty for evidence-level events
	Detail     string      `json:"detail,omitempty"`
	Digest     string      `json:"digest,omitempty"` // Chain digest over this event and its predecessor
}

// AuditQuery selects events from the trail. Empty fields match every event.
type AuditQuery struct {
	Run        string
	EvidenceID string
}

// Matches reports whether e is selected by q
func (q AuditQuery) Matches(e AuditEvent) bool {
	return (q.Run == "" || e.Run == q.Run) && (q.EvidenceID == "" || e.EvidenceID == q.EvidenceID)
}

// ChainDigest links e to the digest of the event recorded before it. An
// edited or removed row breaks every digest after it. Events without a
// run hash as they did before runs were recorded.
func ChainDigest(prev string, e AuditEvent) string {
	h := sha256.New()
	parts := []string{
		prev,
		strconv.FormatInt(e.Time.UTC().UnixNano(), 10),
		string(e.Action),
		e.EvidenceID,
		e.Session,
		e.Detail,
	}
	if e.Run != "" {
		parts = append(parts, e.Run)
	}
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortToken abbreviates a session token to first4..last4 so custody
// records never carry a usable handle
func ShortToken(token string) string {
	if len(token) <= 10 {
		return token
	}
	return token[:4] + ".." + token[len(token)-4:]
}
