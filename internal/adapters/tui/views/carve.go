package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/tui/styles"
	"forensdesk/internal/domain"
)

// CarveTypes are the filters the carve view cycles through
var CarveTypes = []string{"all", "image", "document", "archive", "database", "executable", "text"}

// CarveKeyMap defines key bindings for the carve view
type CarveKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Type key.Binding
	Run  key.Binding
	Copy key.Binding
	Back key.Binding
}

var CarveKeys = CarveKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
	),
	Type: key.NewBinding(
		key.WithKeys("tab", "t"),
		key.WithHelp("tab", "file type"),
	),
	Run: key.NewBinding(
		key.WithKeys("enter", "r"),
		key.WithHelp("enter", "carve"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "back"),
	),
}

// carveChrome is the number of lines around the result list
const carveChrome = 11

// CarveModel recovers files by signature and lists what was found
type CarveModel struct {
	ViewState
	inspector Inspector
	typeIndex int
	spinner   spinner.Model
	files     *Pager[domain.CarvedFile]
	carved    bool
	carving   bool
}

// NewCarveModel creates a new carve view model
func NewCarveModel(inspector Inspector) *CarveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Success

	return &CarveModel{
		inspector: inspector,
		spinner:   s,
		files:     NewPager[domain.CarvedFile](10),
	}
}

// Init implements tea.Model
func (m *CarveModel) Init() tea.Cmd {
	return nil
}

// FileType is the selected carve filter
func (m *CarveModel) FileType() string {
	return CarveTypes[m.typeIndex]
}

type carveResultsMsg struct {
	fileType string
	files    []domain.CarvedFile
	err      error
}

// Update handles messages for the carve view
func (m *CarveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case carveResultsMsg:
		if msg.fileType != m.FileType() {
			return m, nil
		}
		m.carving = false
		m.carved = true
		if msg.err != nil {
			m.SetError(msg.err)
			return m, nil
		}
		m.files.SetItems(msg.files)
		m.files.Select(0)
		return m, nil

	case spinner.TickMsg:
		if !m.carving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case copiedMsg:
		m.SetMessage(msg.status())
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		switch {
		case key.Matches(msg, CarveKeys.Back):
			return m, switchTo(SwitchToBrowserMsg{})

		case key.Matches(msg, CarveKeys.Up):
			m.files.Up()

		case key.Matches(msg, CarveKeys.Down):
			m.files.Down()

		case key.Matches(msg, CarveKeys.Type):
			if !m.carving {
				m.typeIndex = (m.typeIndex + 1) % len(CarveTypes)
				m.carved = false
				m.files.Clear()
			}

		case key.Matches(msg, CarveKeys.Run):
			if !m.carving {
				return m, m.Carve()
			}

		case key.Matches(msg, CarveKeys.Copy):
			if f, ok := m.files.Selected(); ok {
				return m, copyToClipboard(f.Path)
			}
		}
	}
	return m, nil
}

// Carve starts a carve with the selected filter
func (m *CarveModel) Carve() tea.Cmd {
	fileType := m.FileType()
	m.carving = true
	m.files.Clear()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		files, err := m.inspector.Carve(context.Background(), fileType)
		return carveResultsMsg{fileType: fileType, files: files, err: err}
	})
}

// View renders the carve view
func (m *CarveModel) View() string {
	m.files.Resize(m.listHeight(carveChrome))

	v := NewViewBuilder().Title("Carve unallocated space")
	v.Line(RenderLabelValue("type", m.FileType()))
	v.BlankLine()

	switch {
	case m.carving:
		v.Line(m.spinner.View() + " Carving...")
	case !m.carved:
		v.Muted("Press enter to carve")
	case m.files.Len() == 0:
		v.Muted("No files recovered")
	default:
		v.Subtitle(fmt.Sprintf("%d files recovered", m.files.Len()))
		start, rows := m.files.Visible()
		for i, f := range rows {
			text := fmt.Sprintf("%-5s %12s %9s  %s", f.Extension, f.OffsetLabel(), f.Size, f.Path)
			if start+i == m.files.Cursor() {
				text = styles.NodeSelected.Render(text)
			}
			v.Line(text)
		}
		if label := m.files.PageLabel(); label != "" {
			v.Muted(label)
		}
	}

	return v.Status(&m.ViewState).
		Help(CarveKeys.Up, CarveKeys.Type, CarveKeys.Run, CarveKeys.Copy, CarveKeys.Back).
		String()
}
