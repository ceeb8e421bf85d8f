package views

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"forensdesk/internal/adapters/tui/styles"
)

// RenderHelpLine joins the help text of bindings into a single footer line.
// Bindings without help text are skipped.
func RenderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderLabelValue renders "label: value" with the label highlighted
func RenderLabelValue(label, value string) string {
	return styles.InputLabel.Render(label+":") + " " + value
}

// ViewBuilder collects the lines of a screen
type ViewBuilder struct {
	lines []string
}

// NewViewBuilder creates an empty screen
func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

func (v *ViewBuilder) add(style lipgloss.Style, text string) *ViewBuilder {
	v.lines = append(v.lines, style.Render(text))
	return v
}

// Title adds the screen heading
func (v *ViewBuilder) Title(title string) *ViewBuilder {
	return v.add(styles.Title, title)
}

// Subtitle adds a heading followed by a blank line
func (v *ViewBuilder) Subtitle(subtitle string) *ViewBuilder {
	return v.add(styles.Subtitle, subtitle).BlankLine()
}

// Muted adds a dimmed line
func (v *ViewBuilder) Muted(text string) *ViewBuilder {
	return v.add(styles.MutedText, text)
}

// Line adds text as is
func (v *ViewBuilder) Line(text string) *ViewBuilder {
	v.lines = append(v.lines, text)
	return v
}

func (v *ViewBuilder) BlankLine() *ViewBuilder {
	return v.Line("")
}

// Status adds the status message of s, if any
func (v *ViewBuilder) Status(s *ViewState) *ViewBuilder {
	if s.Message == "" {
		return v
	}
	style := styles.Success
	if s.MessageErr {
		style = styles.ErrorMsg
	}
	return v.BlankLine().add(style, s.Message)
}

// Help adds the key binding footer
func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	return v.BlankLine().Line(RenderHelpLine(bindings...))
}

// String renders the screen inside the app frame
func (v *ViewBuilder) String() string {
	return styles.App.Render(strings.Join(v.lines, "\n"))
}

type copiedMsg struct {
	text string
	err  error
}

// copyToClipboard writes text to the system clipboard. Headless sessions
// have no clipboard, so the failure is reported rather than fatal.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{text: text, err: clipboard.WriteAll(text)}
	}
}

func (m copiedMsg) status() (string, bool) {
	if m.err != nil {
		return fmt.Sprintf("Clipboard unavailable: %s", m.text), true
	}
	return "Copied " + m.text, false
}
