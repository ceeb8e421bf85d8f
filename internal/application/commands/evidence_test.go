package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/application"
	"forensdesk/internal/domain"
	"forensdesk/internal/ports"
)

func TestRegisterEvidenceCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute path", "/tmp/img1.raw", false},
		{"any extension", "/tmp/notes.txt", false},
		{"empty", "", true},
		{"whitespace", "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&RegisterEvidenceCommand{Path: tt.path}).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterEvidenceSequence(t *testing.T) {
	ws, audit := newWorkspace(demo.Opener{})
	ctx := context.Background()

	for i, want := range []string{"E001", "E002", "E003"} {
		res, err := NewRegisterEvidenceCommand(ws, "/tmp/img.raw").Execute(ctx)
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if res.ID != want {
			t.Errorf("expected %s, got %s", want, res.ID)
		}
	}
	if len(audit.actions()) != 3 {
		t.Errorf("expected 3 audit events, got %d", len(audit.actions()))
	}

	records, _ := NewListEvidenceCommand(ws).Execute(ctx)
	if len(records) != 3 || records[0].ID != "E001" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestCloseEvidenceInvalidatesSessions(t *testing.T) {
	ws, audit := newWorkspace(demo.Opener{})
	ctx := context.Background()

	opened, err := OpenImage(ctx, ws, "/tmp/img1.raw")
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewOpenSessionCommand(ws, opened.EvidenceID).Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}

	res, err := NewCloseEvidenceCommand(ws, opened.EvidenceID).Execute(ctx)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(res.InvalidatedSessions) != 2 {
		t.Errorf("expected 2 sessions ended, got %d", len(res.InvalidatedSessions))
	}

	for _, token := range []string{opened.Token, second.Token} {
		_, err := NewListDirectoryCommand(ws, token, 0, nil).Execute(ctx)
		if !errors.Is(err, application.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken after close, got %v", err)
		}
	}

	rec, _ := ws.Registry.Resolve(opened.EvidenceID)
	if rec.Open {
		t.Error("expected record closed")
	}

	_, err = NewOpenSessionCommand(ws, opened.EvidenceID).Execute(ctx)
	if !errors.Is(err, application.ErrEvidenceClosed) {
		t.Errorf("expected ErrEvidenceClosed, got %v", err)
	}

	if _, err := NewCloseEvidenceCommand(ws, opened.EvidenceID).Execute(ctx); err != nil {
		t.Errorf("closing twice should succeed, got %v", err)
	}

	var closed, invalidated int
	for _, a := range audit.actions() {
		switch a {
		case domain.AuditEvidenceClosed:
			closed++
		case domain.AuditSessionInvalidated:
			invalidated++
		}
	}
	if closed != 2 || invalidated != 2 {
		t.Errorf("expected 2 closed and 2 invalidated events, got %d and %d", closed, invalidated)
	}
}

// slowOpener blocks in Open until release is closed
type slowOpener struct {
	entered chan struct{}
	release chan struct{}
}

func (o *slowOpener) Open(_ context.Context, path string) (ports.ImageCapability, error) {
	o.entered <- struct{}{}
	<-o.release
	return demo.New(path), nil
}

func (o *slowOpener) Name() string { return "sleuthkit" }

func TestCloseEvidenceRacingOpenSession(t *testing.T) {
	opener := &slowOpener{entered: make(chan struct{}), release: make(chan struct{})}
	ws, _ := newWorkspace(opener)
	ctx := context.Background()

	reg, err := NewRegisterEvidenceCommand(ws, "/tmp/img1.raw").Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}

	type outcome struct {
		res *application.OpenResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := NewOpenSessionCommand(ws, reg.ID).Execute(ctx)
		done <- outcome{res, err}
	}()

	<-opener.entered
	if _, err := NewCloseEvidenceCommand(ws, reg.ID).Execute(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	close(opener.release)

	out := <-done
	if !errors.Is(out.err, application.ErrEvidenceClosed) {
		t.Fatalf("open finishing after close should fail with ErrEvidenceClosed, got %v", out.err)
	}
	if n := ws.Sessions.Count(); n != 0 {
		t.Errorf("expected no live sessions on closed evidence, got %d", n)
	}
}

func TestCloseEvidenceErrors(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	ctx := context.Background()

	_, err := NewCloseEvidenceCommand(ws, "E404").Execute(ctx)
	if !errors.Is(err, application.ErrUnknownEvidence) {
		t.Errorf("expected ErrUnknownEvidence, got %v", err)
	}

	_, err = NewCloseEvidenceCommand(ws, "img1.raw").Execute(ctx)
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestOpenSessionUnknownEvidence(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})

	_, err := NewOpenSessionCommand(ws, "E001").Execute(context.Background())
	if !errors.Is(err, application.ErrUnknownEvidence) {
		t.Errorf("expected ErrUnknownEvidence, got %v", err)
	}
}

func TestInvalidateSession(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")
	ctx := context.Background()

	if err := NewInvalidateSessionCommand(ws, token).Execute(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := NewInvalidateSessionCommand(ws, token).Execute(ctx); !errors.Is(err, application.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken on second invalidate, got %v", err)
	}
}

func TestAcquireEvidence(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	ctx := context.Background()

	res, err := NewAcquireEvidenceCommand(ws, &fakeAcquirer{}, "s3://case-42/img.raw", true).Execute(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if res.EvidenceID != "E001" || res.Session == nil {
		t.Fatalf("unexpected result %+v", res)
	}

	rec, _ := ws.Registry.Resolve(res.EvidenceID)
	if rec.SHA512 != "abc123" || rec.Path != "/uploads/img.raw" {
		t.Errorf("expected digest and stored path on record, got %+v", rec)
	}

	if _, err := NewAcquireEvidenceCommand(ws, &fakeAcquirer{}, "s3://missing/img.raw", false).Execute(ctx); err == nil {
		t.Error("expected acquisition failure")
	}
	if _, err := NewAcquireEvidenceCommand(ws, &fakeAcquirer{}, "", false).Execute(ctx); err == nil {
		t.Error("expected validation failure for empty ref")
	}
}

func TestUploadEvidence(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{}, application.WithTokenStrategy(application.TokenBasename))
	acq := &fakeAcquirer{}
	ctx := context.Background()

	res, err := NewUploadEvidenceCommand(ws, acq, "img1.raw", bytes.NewReader([]byte("image")), true).Execute(ctx)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Session.Token != "img1.raw" {
		t.Errorf("expected basename token, got %s", res.Session.Token)
	}
	if string(acq.stored) != "image" {
		t.Errorf("expected body to be stored, got %q", acq.stored)
	}

	_, err = NewUploadEvidenceCommand(ws, acq, "notes.txt", strings.NewReader("x"), true).Execute(ctx)
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError for .txt upload, got %v", err)
	}
}

func TestAuditTrail(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	ctx := context.Background()
	token := openDemo(ws, "/tmp/img1.raw")
	openDemo(ws, "/tmp/img2.raw")

	if _, err := NewReadFileCommand(ws, token, 12345, 0).Execute(ctx); err != nil {
		t.Fatal(err)
	}

	events, err := NewAuditTrailCommand(ws, "E001").Execute(ctx)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	want := []domain.AuditAction{domain.AuditEvidenceRegistered, domain.AuditSessionOpened, domain.AuditFileRead}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, action := range want {
		if events[i].Action != action {
			t.Errorf("event %d: expected %s, got %s", i, action, events[i].Action)
		}
	}
	if len(events[2].Session) > 10 {
		t.Errorf("expected abbreviated session token in audit, got %q", events[2].Session)
	}

	all, _ := NewAuditTrailCommand(ws, "").Execute(ctx)
	if len(all) != 5 {
		t.Errorf("expected 5 events overall, got %d", len(all))
	}
}

func TestAuditTrailRuns(t *testing.T) {
	ws, audit := newWorkspace(demo.Opener{})
	ctx := context.Background()
	openDemo(ws, "/cases/bravo.raw")
	audit.Record(ctx, domain.AuditEvent{Run: "earlier-run", Action: domain.AuditEvidenceRegistered, EvidenceID: "E001", Detail: "path=/cases/alpha.raw"})

	current, err := NewAuditTrailCommand(ws, "E001").Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range current {
		if e.Run != ws.Registry.RunID() {
			t.Errorf("expected only current run events, got %+v", e)
		}
	}

	earlier, err := NewAuditTrailCommand(ws, "E001").InRun("earlier-run").Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(earlier) != 1 || earlier[0].Detail != "path=/cases/alpha.raw" {
		t.Errorf("expected the earlier run's registration, got %+v", earlier)
	}

	_, err = NewAuditTrailCommand(ws, "E001").InRun("").Execute(ctx)
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError for evidence ID across runs, got %v", err)
	}

	all, err := NewAuditTrailCommand(ws, "").InRun("").Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(current)+1 {
		t.Errorf("expected %d events across runs, got %d", len(current)+1, len(all))
	}
}
