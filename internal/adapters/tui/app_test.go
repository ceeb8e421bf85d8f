package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/demo"
	"forensdesk/internal/application"
	"forensdesk/internal/application/commands"
)

func newDemoInspector(t *testing.T) (*SessionInspector, *application.Workspace) {
	t.Helper()
	ws := application.NewWorkspace(application.NewRegistry(), application.NewSessions(demo.Opener{}), nil, nil)
	insp, err := OpenInspector(context.Background(), ws, "/evidence/img1.raw")
	if err != nil {
		t.Fatalf("OpenInspector: %v", err)
	}
	return insp, ws
}

// send delivers msg and then the messages its commands produce, a few
// levels deep. It reports whether the program asked to quit.
func send(a *App, msg tea.Msg) (quit bool) {
	queue := []tea.Msg{msg}
	for depth := 0; depth < 5 && len(queue) > 0; depth++ {
		var next []tea.Msg
		for _, m := range queue {
			if _, ok := m.(tea.QuitMsg); ok {
				quit = true
				continue
			}
			_, cmd := a.Update(m)
			next = append(next, run(cmd)...)
		}
		queue = next
	}
	return quit
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestSessionInspector_Describe(t *testing.T) {
	insp, _ := newDemoInspector(t)

	if insp.EvidenceID() != "E001" {
		t.Errorf("expected E001, got %s", insp.EvidenceID())
	}
	if got := insp.Describe(); got != "E001  img1.raw  (demo)" {
		t.Errorf("Describe() = %q", got)
	}
	if insp.Warning() != "" {
		t.Errorf("a direct demo session is not degraded, got %q", insp.Warning())
	}
}

func TestApp_BrowseAndReadFile(t *testing.T) {
	insp, _ := newDemoInspector(t)
	a := NewApp(insp)

	send(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	send(a, a.Init()())

	view := a.View()
	for _, want := range []string{"Demo Partition", "demo_file.txt", "demo_folder", "$OrphanFiles"} {
		if !strings.Contains(view, want) {
			t.Errorf("browser view missing %q:\n%s", want, view)
		}
	}

	send(a, keys("j"))
	send(a, keys("j"))
	send(a, tea.KeyMsg{Type: tea.KeyEnter})

	if a.State() != ViewContent {
		t.Fatalf("expected content view, got %d", a.State())
	}
	if view := a.View(); !strings.Contains(view, string(demo.FileContent)) {
		t.Errorf("content view missing file text:\n%s", view)
	}

	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.State() != ViewBrowser {
		t.Errorf("expected browser after esc, got %d", a.State())
	}
}

func TestApp_SearchAndCarveViews(t *testing.T) {
	insp, _ := newDemoInspector(t)
	a := NewApp(insp)
	send(a, a.Init()())

	send(a, keys("c"))
	if a.State() != ViewCarve {
		t.Fatalf("expected carve view, got %d", a.State())
	}
	send(a, tea.KeyMsg{Type: tea.KeyEnter})
	if view := a.View(); !strings.Contains(view, "demo_carved_file.txt") {
		t.Errorf("carve view missing demo result:\n%s", view)
	}

	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	send(a, keys("/"))
	if a.State() != ViewSearch {
		t.Fatalf("expected search view, got %d", a.State())
	}
	send(a, tea.KeyMsg{Type: tea.KeyEnter})
	if view := a.View(); !strings.Contains(view, "No results found") {
		t.Errorf("an empty query finds nothing:\n%s", view)
	}
}

func TestApp_CloseEvidenceQuits(t *testing.T) {
	insp, ws := newDemoInspector(t)
	a := NewApp(insp)
	send(a, a.Init()())

	send(a, keys("x"))
	if a.State() != ViewConfirmClose {
		t.Fatalf("expected confirmation view, got %d", a.State())
	}
	if quit := send(a, keys("y")); !quit {
		t.Fatal("closing the evidence should quit")
	}
	if !strings.Contains(a.ClosedMessage, "E001") {
		t.Errorf("unexpected close message %q", a.ClosedMessage)
	}

	_, err := commands.NewOpenSessionCommand(ws, "E001").Execute(context.Background())
	if !errors.Is(err, application.ErrEvidenceClosed) {
		t.Errorf("expected closed evidence, got %v", err)
	}
}
