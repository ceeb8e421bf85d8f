package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/tui/styles"
	"forensdesk/internal/application/commands"
)

// ContentKeyMap defines key bindings for the content view
type ContentKeyMap struct {
	Scroll key.Binding
	Copy   key.Binding
	Back   key.Binding
}

var ContentKeys = ContentKeyMap{
	Scroll: key.NewBinding(
		key.WithKeys("j", "k", "up", "down", "pgup", "pgdown"),
		key.WithHelp("j/k", "scroll"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy ref"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q", "h", "left"),
		key.WithHelp("esc", "back"),
	),
}

// hexRowBytes is the number of bytes shown per hex row
const hexRowBytes = 16

// contentChrome is the number of lines around the viewport
const contentChrome = 10

// ContentModel shows one file as text or as a hex dump
type ContentModel struct {
	ViewState
	inspector Inspector
	node      *Node
	result    *commands.ViewResult
	viewport  viewport.Model
}

// NewContentModel creates a new content view model
func NewContentModel(inspector Inspector) *ContentModel {
	return &ContentModel{
		inspector: inspector,
		viewport:  viewport.New(80, 20),
	}
}

// Init implements tea.Model
func (m *ContentModel) Init() tea.Cmd {
	return nil
}

// SetNode selects the file to show and returns the command loading it
func (m *ContentModel) SetNode(node *Node) tea.Cmd {
	m.node = node
	m.result = nil
	m.ClearMessage()
	m.viewport.SetContent("")
	m.viewport.GotoTop()

	offset, inode := node.Offset, node.Inode
	return func() tea.Msg {
		res, err := m.inspector.View(context.Background(), offset, inode)
		if err != nil {
			return contentErrMsg{err}
		}
		return contentLoadedMsg{res}
	}
}

type contentLoadedMsg struct {
	result *commands.ViewResult
}

type contentErrMsg struct {
	err error
}

// Update handles messages for the content view
func (m *ContentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case contentLoadedMsg:
		m.result = msg.result
		m.viewport.SetContent(renderBody(msg.result))
		return m, nil

	case contentErrMsg:
		m.SetError(msg.err)
		return m, nil

	case copiedMsg:
		m.SetMessage(msg.status())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ContentKeys.Back):
			return m, switchTo(SwitchToBrowserMsg{})
		case key.Matches(msg, ContentKeys.Copy):
			if m.node != nil {
				return m, copyToClipboard(m.node.Reference())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize updates the view and viewport dimensions
func (m *ContentModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.viewport.Width = max(width-6, 20)
	m.viewport.Height = m.listHeight(contentChrome)
}

// View renders the content view
func (m *ContentModel) View() string {
	v := NewViewBuilder()
	if m.node == nil {
		return v.Muted("No file selected").String()
	}

	v.Title(m.node.Name)
	v.Line(fmt.Sprintf("%s  %s  %s",
		RenderLabelValue("inode", fmt.Sprintf("%d", m.node.Inode)),
		RenderLabelValue("size", m.node.Size),
		RenderLabelValue("modified", m.node.Modified)))

	switch {
	case m.result == nil && m.Message == "":
		v.Muted("Reading...")
	case m.result != nil:
		mode := "text"
		if !m.result.IsText {
			mode = fmt.Sprintf("binary, hex of the first %d bytes", min(m.result.FileSize, hexPreviewBytes(m.result)))
		}
		v.Muted(fmt.Sprintf("%d bytes, %s  %3.f%%", m.result.FileSize, mode, m.viewport.ScrollPercent()*100))
		v.Line(styles.ContentFrame.Render(m.viewport.View()))
	}

	return v.Status(&m.ViewState).
		Help(ContentKeys.Scroll, ContentKeys.Copy, ContentKeys.Back).
		String()
}

func hexPreviewBytes(res *commands.ViewResult) int {
	return len(res.Content) / 2
}

// renderBody lays text out as is and hex as offset-prefixed rows
func renderBody(res *commands.ViewResult) string {
	if res.IsText {
		return res.Content
	}
	return formatHexRows(res.Content)
}

// formatHexRows splits a hex string into rows of hexRowBytes bytes with
// the byte offset of each row
func formatHexRows(hexStr string) string {
	var b strings.Builder
	rowChars := hexRowBytes * 2
	for off := 0; off < len(hexStr); off += rowChars {
		row := hexStr[off:min(off+rowChars, len(hexStr))]
		b.WriteString(styles.HexOffset.Render(fmt.Sprintf("%08x  ", off/2)))
		for i := 0; i < len(row); i += 2 {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(row[i:min(i+2, len(row))])
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
