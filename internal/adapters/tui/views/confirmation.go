package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/tui/styles"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys are the y/n bindings of every confirmation prompt
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// EvidenceClosedMsg is sent once the evidence has been closed
type EvidenceClosedMsg struct {
	Message string
}

// CloseEvidenceModel asks before closing the evidence. Closing ends the
// session and the evidence cannot be reopened in this process.
type CloseEvidenceModel struct {
	ViewState
	inspector Inspector
	Keys      ConfirmKeyMap
	closing   bool
}

// NewCloseEvidenceModel creates a new confirmation model with default keys
func NewCloseEvidenceModel(inspector Inspector) *CloseEvidenceModel {
	return &CloseEvidenceModel{
		inspector: inspector,
		Keys:      DefaultConfirmKeys,
	}
}

// Init implements tea.Model
func (m *CloseEvidenceModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the confirmation view
func (m *CloseEvidenceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		m.closing = false
		m.SetError(msg.err)
		return m, nil

	case tea.KeyMsg:
		if m.closing {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.Keys.Cancel):
			m.ClearMessage()
			return m, switchTo(SwitchToBrowserMsg{})
		case key.Matches(msg, m.Keys.Confirm):
			m.closing = true
			return m, m.close
		}
	}
	return m, nil
}

func (m *CloseEvidenceModel) close() tea.Msg {
	res, err := m.inspector.CloseEvidence(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return EvidenceClosedMsg{Message: res.Message}
}

// View renders the confirmation prompt
func (m *CloseEvidenceModel) View() string {
	v := NewViewBuilder().Title("Close evidence")
	v.Line(styles.InputLabel.Render("Evidence:"))
	v.Line("  " + m.inspector.Describe())
	v.BlankLine()
	v.Muted("Every session on it is invalidated and the close is recorded")
	v.Muted("in the custody trail. The image cannot be reopened afterwards.")
	v.BlankLine()
	if m.closing {
		v.Line("Closing...")
	} else {
		v.Line(RenderConfirmPrompt("Close this evidence?"))
	}
	return v.Status(&m.ViewState).String()
}

// RenderConfirmPrompt renders question followed by the confirm keys
func RenderConfirmPrompt(question string) string {
	return question + "  " + RenderHelpLine(DefaultConfirmKeys.Confirm, DefaultConfirmKeys.Cancel)
}
