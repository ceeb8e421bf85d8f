package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/application"
	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

type memoryAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (m *memoryAudit) Record(_ context.Context, e domain.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memoryAudit) List(_ context.Context, q domain.AuditQuery) ([]domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range m.events {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryAudit) Close() error { return nil }

func (m *memoryAudit) actions() []domain.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditAction
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

// brokenOpener fails for a reason other than a missing backend
type brokenOpener struct{}

func (brokenOpener) Open(context.Context, string) (ports.ImageCapability, error) {
	return nil, errors.New("mmls: image is truncated")
}

func (brokenOpener) Name() string { return "sleuthkit" }

type missingToolOpener struct{}

func (missingToolOpener) Open(context.Context, string) (ports.ImageCapability, error) {
	return nil, ports.ErrBackendUnavailable
}

func (missingToolOpener) Name() string { return "sleuthkit" }

func newWorkspace(opener ports.CapabilityOpener, opts ...application.SessionOption) (*application.Workspace, *memoryAudit) {
	audit := &memoryAudit{}
	opts = append([]application.SessionOption{
		application.WithFallback(application.DemoFallback{Opener: demo.Opener{}}),
	}, opts...)
	sessions := application.NewSessions(opener, opts...)
	return application.NewWorkspace(application.NewRegistry(), sessions, audit, nil), audit
}

func openDemo(ws *application.Workspace, path string) string {
	res, err := OpenImage(context.Background(), ws, path)
	if err != nil {
		panic(err)
	}
	return res.Token
}

type fakeAcquirer struct {
	stored []byte
}

func (f *fakeAcquirer) Acquire(_ context.Context, ref string) (*domain.Acquisition, error) {
	if ref == "s3://missing/img.raw" {
		return nil, errors.New("no such key")
	}
	return &domain.Acquisition{Path: "/uploads/img.raw", Source: ref, SHA512: "abc123", Size: 10}, nil
}

func (f *fakeAcquirer) Store(_ context.Context, name string, body io.Reader) (*domain.Acquisition, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}
	f.stored = buf.Bytes()
	return &domain.Acquisition{Path: "/uploads/" + name, Source: "upload", SHA512: "def456", Size: int64(buf.Len())}, nil
}
