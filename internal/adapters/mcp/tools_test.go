package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/application"
	"forensdesk/internal/application/commands"
)

func newWorkspace() *application.Workspace {
	sessions := application.NewSessions(demo.Opener{},
		application.WithTokenStrategy(application.TokenBasename),
	)
	return application.NewWorkspace(application.NewRegistry(), sessions, nil, nil)
}

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestOpenImageAndBrowse(t *testing.T) {
	ws := newWorkspace()

	text, isErr := call(t, openImageHandler(ws), map[string]any{"path": "/tmp/img1.raw"})
	if isErr {
		t.Fatalf("open_image failed: %s", text)
	}
	if !strings.Contains(text, "E001") || !strings.Contains(text, "img1.raw") {
		t.Errorf("unexpected open output %q", text)
	}

	text, isErr = call(t, listHandler(ws), map[string]any{"token": "img1.raw"})
	if isErr || !strings.Contains(text, "12345  f") || !strings.Contains(text, "demo_file.txt") {
		t.Errorf("unexpected listing %q", text)
	}

	text, _ = call(t, listHandler(ws), map[string]any{"token": "img1.raw", "inode": float64(12346)})
	if !strings.Contains(text, "readme.txt") {
		t.Errorf("expected folder listing, got %q", text)
	}

	text, isErr = call(t, readFileHandler(ws), map[string]any{"token": "img1.raw", "inode": float64(12345)})
	if isErr || text != string(demo.FileContent) {
		t.Errorf("unexpected file content %q", text)
	}

	text, _ = call(t, previewHandler(ws), map[string]any{"token": "img1.raw", "inode": float64(12345)})
	if !strings.HasPrefix(text, "Type: text (.txt)") {
		t.Errorf("unexpected preview %q", text)
	}

	text, _ = call(t, partitionsHandler(ws), map[string]any{"token": "img1.raw"})
	if !strings.Contains(text, "Demo Partition") {
		t.Errorf("unexpected partitions %q", text)
	}
}

func TestToolErrors(t *testing.T) {
	ws := newWorkspace()
	if _, err := commands.OpenImage(context.Background(), ws, "/tmp/img1.raw"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		args    map[string]any
		want    string
	}{
		{"unknown token", listHandler(ws), map[string]any{"token": "nope"}, "invalid token"},
		{"missing inode", readFileHandler(ws), map[string]any{"token": "img1.raw"}, "inode is required"},
		{"fractional inode", readFileHandler(ws), map[string]any{"token": "img1.raw", "inode": 1.5}, "must be an integer"},
		{"unlisted inode", readFileHandler(ws), map[string]any{"token": "img1.raw", "inode": float64(99999)}, "not found"},
		{"unknown evidence", closeEvidenceHandler(ws), map[string]any{"evidence_id": "E404"}, "unknown evidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.handler, tt.args)
			if !isErr {
				t.Fatalf("expected tool error, got %q", text)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in %q", tt.want, text)
			}
		})
	}
}

func TestCarveSearchAndClose(t *testing.T) {
	ws := newWorkspace()
	if _, err := commands.OpenImage(context.Background(), ws, "/tmp/img1.raw"); err != nil {
		t.Fatal(err)
	}

	text, _ := call(t, carveHandler(ws), map[string]any{"token": "img1.raw"})
	if !strings.Contains(text, "/demo_carved_file.txt") {
		t.Errorf("unexpected carve output %q", text)
	}

	text, _ = call(t, searchHandler(ws), map[string]any{"token": "img1.raw", "query": "invoice"})
	if !strings.HasPrefix(text, "12348") {
		t.Errorf("unexpected search output %q", text)
	}

	text, _ = call(t, searchHandler(ws), map[string]any{"token": "img1.raw"})
	if text != "No results found." {
		t.Errorf("expected no results, got %q", text)
	}

	text, isErr := call(t, closeEvidenceHandler(ws), map[string]any{"evidence_id": "E001"})
	if isErr || !strings.Contains(text, "1 sessions ended") {
		t.Errorf("unexpected close output %q", text)
	}

	text, _ = call(t, listEvidenceHandler(ws), nil)
	if !strings.Contains(text, "E001  closed") {
		t.Errorf("unexpected evidence list %q", text)
	}

	if _, isErr := call(t, listHandler(ws), map[string]any{"token": "img1.raw"}); !isErr {
		t.Error("expected closed evidence to end its sessions")
	}
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("forensdesk-test", "0.0.0", server.WithToolCapabilities(true))
	ws := newWorkspace()
	RegisterReadTools(s, ws)
	RegisterWriteTools(s, ws, nil)

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	listing := string(raw)

	for _, name := range []string{"partitions", "list_directory", "read_file", "carve", "search", "open_image", "close_evidence"} {
		if !strings.Contains(listing, `"name":"`+name+`"`) {
			t.Errorf("expected tool %s to be registered", name)
		}
	}
	if strings.Contains(listing, `"name":"acquire_evidence"`) {
		t.Error("acquire_evidence needs an acquirer")
	}
}
