package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/application"
	"forensdesk/internal/domain"
)

func TestScenarioRegisterOpenList(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{}, application.WithTokenStrategy(application.TokenBasename))
	ctx := context.Background()

	reg, err := NewRegisterEvidenceCommand(ws, "/tmp/img1.raw").Execute(ctx)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.ID != "E001" {
		t.Fatalf("expected E001, got %s", reg.ID)
	}

	opened, err := NewOpenSessionCommand(ws, reg.ID).Execute(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened.Token != "img1.raw" {
		t.Fatalf("expected token img1.raw, got %s", opened.Token)
	}

	entries, err := NewListDirectoryCommand(ws, opened.Token, 0, nil).Execute(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var found bool
	for _, e := range entries {
		if e.Name == "demo_file.txt" {
			found = true
			if e.IsDirectory {
				t.Error("demo_file.txt should not be a directory")
			}
		}
	}
	if !found {
		t.Errorf("expected demo_file.txt in %+v", entries)
	}
}

func TestListRoundTripPopulatesEntries(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")

	entries, err := NewListDirectoryCommand(ws, token, 0, nil).Execute(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected entries")
	}
	for _, e := range entries {
		if e.Accessed == "" || e.Modified == "" || e.Created == "" || e.Changed == "" {
			t.Errorf("%s: missing timestamps %+v", e.Name, e.Timestamps)
		}
		if !strings.HasSuffix(e.Accessed, " UTC") {
			t.Errorf("%s: expected UTC marker, got %q", e.Name, e.Accessed)
		}
	}
}

func TestQueriesRejectUnknownTokens(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	openDemo(ws, "/tmp/img1.raw")
	ctx := context.Background()
	inode := uint64(12345)

	tokens := []string{"", "img1.raw", "not-a-token", "00000000-0000-0000-0000-000000000000"}
	for _, token := range tokens {
		queries := map[string]func() error{
			"list": func() error {
				_, err := NewListDirectoryCommand(ws, token, 0, &inode).Execute(ctx)
				return err
			},
			"list with bad offset": func() error {
				_, err := NewListDirectoryCommand(ws, token, -5, nil).Execute(ctx)
				return err
			},
			"read": func() error {
				_, err := NewReadFileCommand(ws, token, inode, 0).Execute(ctx)
				return err
			},
			"view": func() error {
				_, err := NewViewFileCommand(ws, token, inode, 0).Execute(ctx)
				return err
			},
			"preview": func() error {
				_, err := NewPreviewFileCommand(ws, token, inode, 0).Execute(ctx)
				return err
			},
			"carve": func() error {
				_, err := NewCarveCommand(ws, token, "all").Execute(ctx)
				return err
			},
			"search": func() error {
				_, err := NewSearchCommand(ws, token, "").Execute(ctx)
				return err
			},
			"partitions": func() error {
				_, err := NewListPartitionsCommand(ws, token).Execute(ctx)
				return err
			},
		}

		for name, run := range queries {
			t.Run(name+"/"+token, func(t *testing.T) {
				if err := run(); !errors.Is(err, application.ErrInvalidToken) {
					t.Errorf("expected ErrInvalidToken, got %v", err)
				}
			})
		}
	}
}

func TestReadFile(t *testing.T) {
	ws, audit := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")
	ctx := context.Background()

	content, err := NewReadFileCommand(ws, token, 12345, 0).Execute(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content.Data) != string(demo.FileContent) {
		t.Errorf("unexpected content %q", content.Data)
	}

	last := audit.actions()[len(audit.actions())-1]
	if last != domain.AuditFileRead {
		t.Errorf("expected file_read audit event, got %s", last)
	}
}

func TestReadFileNotFound(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")
	ctx := context.Background()

	entries, _ := NewListDirectoryCommand(ws, token, 0, nil).Execute(ctx)
	listed := make(map[uint64]bool)
	for _, e := range entries {
		listed[e.InodeNumber] = true
	}

	for _, inode := range []uint64{0, 1, 99999, 12344} {
		if listed[inode] {
			t.Fatalf("fixture unexpectedly lists inode %d", inode)
		}
		_, err := NewReadFileCommand(ws, token, inode, 0).Execute(ctx)
		if !errors.Is(err, application.ErrNotFound) {
			t.Errorf("inode %d: expected ErrNotFound, got %v", inode, err)
		}
		if errors.Is(err, application.ErrInvalidToken) {
			t.Errorf("inode %d: NotFound must stay distinct from InvalidToken", inode)
		}
	}
}

func TestReadFileRejectsNegativeOffset(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")

	_, err := NewReadFileCommand(ws, token, 12345, -1).Execute(context.Background())
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestViewFile(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")

	view, err := NewViewFileCommand(ws, token, 12345, 0).Execute(context.Background())
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.IsText {
		t.Error("expected text classification")
	}
	if view.Content != string(demo.FileContent) {
		t.Errorf("unexpected content %q", view.Content)
	}
	if view.Name != "demo_file.txt" {
		t.Errorf("expected name demo_file.txt, got %q", view.Name)
	}
}

func TestPreviewFile(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")

	preview, err := NewPreviewFileCommand(ws, token, 12345, 0).Execute(context.Background())
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	want := domain.FileType{Type: "text", Extension: "txt", Description: "Text File"}
	if preview.FileType != want {
		t.Errorf("expected %+v, got %+v", want, preview.FileType)
	}
	if !preview.IsText {
		t.Error("expected text content")
	}
}

func TestListPartitions(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")

	res, err := NewListPartitionsCommand(ws, token).Execute(context.Background())
	if err != nil {
		t.Fatalf("partitions: %v", err)
	}
	if len(res.Partitions) != 1 || res.Partitions[0].StartOffset != 2048 {
		t.Errorf("unexpected partitions %+v", res.Partitions)
	}
	if res.Wiped || res.Backend != "demo" || res.EvidenceID != "E001" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestCarveDefaultsToAll(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")

	cmd := NewCarveCommand(ws, token, "")
	if cmd.FileType != "all" {
		t.Fatalf("expected default file type all, got %q", cmd.FileType)
	}
	carved, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("carve: %v", err)
	}
	if len(carved) != 1 || carved[0].Name != "demo_carved_file.txt" {
		t.Errorf("unexpected carve result %+v", carved)
	}
}

func TestCarveWipedImageReturnsEmpty(t *testing.T) {
	ws, _ := newWorkspace(demo.Opener{Options: []demo.Option{demo.Wiped()}})
	token := openDemo(ws, "/tmp/blank.dd")

	carved, err := NewCarveCommand(ws, token, "all").Execute(context.Background())
	if err != nil {
		t.Fatalf("carving a wiped image must not fail, got %v", err)
	}
	if carved == nil || len(carved) != 0 {
		t.Errorf("expected an empty, non-nil sequence, got %#v", carved)
	}
}

func TestSearch(t *testing.T) {
	ws, audit := newWorkspace(demo.Opener{})
	token := openDemo(ws, "/tmp/img1.raw")
	ctx := context.Background()

	results, err := NewSearchCommand(ws, token, "invoice").Execute(ctx)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "demo_search_invoice.txt" {
		t.Errorf("unexpected results %+v", results)
	}

	empty, err := NewSearchCommand(ws, token, "").Execute(ctx)
	if err != nil {
		t.Fatalf("empty query must be legal, got %v", err)
	}
	if empty == nil {
		t.Error("expected a non-nil empty sequence")
	}

	var searches int
	for _, a := range audit.actions() {
		if a == domain.AuditSearch {
			searches++
		}
	}
	if searches != 2 {
		t.Errorf("expected 2 search audit events, got %d", searches)
	}
}

func TestDegradedSessionStillServesQueries(t *testing.T) {
	ws, audit := newWorkspace(missingToolOpener{})
	ctx := context.Background()

	res, err := OpenImage(ctx, ws, "/tmp/img1.raw")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !res.Degraded || res.Warning == "" || res.Backend != "demo" {
		t.Errorf("expected degraded demo session with warning, got %+v", res)
	}

	if _, err := NewListDirectoryCommand(ws, res.Token, 0, nil).Execute(ctx); err != nil {
		t.Errorf("degraded session should still list, got %v", err)
	}

	actions := audit.actions()
	if actions[1] != domain.AuditSessionDegraded {
		t.Errorf("expected session_degraded audit event, got %v", actions)
	}
}

func TestUnrelatedOpenFailureIsNotMasked(t *testing.T) {
	ws, _ := newWorkspace(brokenOpener{})

	_, err := OpenImage(context.Background(), ws, "/tmp/img1.raw")
	if !errors.Is(err, application.ErrConstructionFailed) {
		t.Errorf("expected ErrConstructionFailed, got %v", err)
	}
	if ws.Sessions.Count() != 0 {
		t.Error("no token may be issued on construction failure")
	}
}
