package application

import (
	"context"
	"errors"
	"testing"

	"forensdesk/internal/domain"
)

type memoryAudit struct {
	events []domain.AuditEvent
	err    error
	closed bool
}

func (m *memoryAudit) Record(_ context.Context, e domain.AuditEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memoryAudit) List(_ context.Context, q domain.AuditQuery) ([]domain.AuditEvent, error) {
	var out []domain.AuditEvent
	for _, e := range m.events {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryAudit) Close() error {
	m.closed = true
	return nil
}

func TestWorkspaceRecordStampsTime(t *testing.T) {
	audit := &memoryAudit{}
	ws := NewWorkspace(NewRegistry(), NewSessions(&fakeOpener{name: "primary"}), audit, nil)

	ws.Record(context.Background(), domain.AuditEvent{Action: domain.AuditEvidenceRegistered, EvidenceID: "E001"})

	if len(audit.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(audit.events))
	}
	if audit.events[0].Time.IsZero() {
		t.Error("expected event time to be set")
	}
	if audit.events[0].Run != ws.Registry.RunID() || ws.Registry.RunID() == "" {
		t.Errorf("expected event stamped with run %q, got %q", ws.Registry.RunID(), audit.events[0].Run)
	}
}

func TestWorkspaceRecordSwallowsFailure(t *testing.T) {
	audit := &memoryAudit{err: errors.New("disk full")}
	ws := NewWorkspace(NewRegistry(), NewSessions(&fakeOpener{name: "primary"}), audit, nil)

	ws.Record(context.Background(), domain.AuditEvent{Action: domain.AuditSearch})
}

func TestWorkspaceNilAudit(t *testing.T) {
	ws := NewWorkspace(NewRegistry(), NewSessions(&fakeOpener{name: "primary"}), nil, nil)
	ws.Record(context.Background(), domain.AuditEvent{Action: domain.AuditSearch})

	if err := ws.Close(); err != nil {
		t.Errorf("expected clean close, got %v", err)
	}
}

func TestWorkspaceCloseReleasesAudit(t *testing.T) {
	audit := &memoryAudit{}
	ws := NewWorkspace(NewRegistry(), NewSessions(&fakeOpener{name: "primary"}), audit, nil)

	if err := ws.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !audit.closed {
		t.Error("expected audit log to be closed")
	}
}
