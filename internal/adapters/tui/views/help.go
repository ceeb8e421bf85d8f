package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/tui/styles"
)

var HelpKeys = struct {
	Close key.Binding
}{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

// helpSections is read from the key maps so the help screen lists exactly
// what each view binds
func helpSections() []helpSection {
	return []helpSection{
		{"Tree", []key.Binding{BrowserKeys.Up, BrowserKeys.PageUp, BrowserKeys.Left, BrowserKeys.Enter, BrowserKeys.Copy}},
		{"Analysis", []key.Binding{BrowserKeys.Carve, BrowserKeys.Search, BrowserKeys.Close}},
		{"File content", []key.Binding{ContentKeys.Scroll, ContentKeys.Copy, ContentKeys.Back}},
		{"Carving", []key.Binding{CarveKeys.Type, CarveKeys.Run, CarveKeys.Copy}},
		{"Search", []key.Binding{SearchKeys.Select, SearchKeys.Cancel}},
		{"General", []key.Binding{BrowserKeys.Help, BrowserKeys.Quit}},
	}
}

// HelpModel lists every key binding by view
type HelpModel struct {
	ViewState
}

func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

func (m *HelpModel) Init() tea.Cmd {
	return nil
}

func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, switchTo(SwitchToBrowserMsg{})
		}
	}
	return m, nil
}

func (m *HelpModel) View() string {
	v := NewViewBuilder().Title("forensdesk help").
		Subtitle("Read-only browsing of disk and file-system images")

	for _, section := range helpSections() {
		v.Line(styles.InputLabel.Render(section.title))
		for _, b := range section.bindings {
			h := b.Help()
			v.Line(fmt.Sprintf("  %s%s", styles.HelpKey.Render(fmt.Sprintf("%-12s", h.Key)), styles.HelpDesc.Render(h.Desc)))
		}
		v.BlankLine()
	}

	v.Line(styles.InputLabel.Render("Custody"))
	v.Muted("  Every file read, carve and search is recorded in the audit trail.")
	v.Muted("  Inspect it with: forensdesk-cli audit <evidence-id>")

	return v.Help(HelpKeys.Close).String()
}
