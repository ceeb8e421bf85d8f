package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/tui/styles"
	"forensdesk/internal/domain"
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑/↓", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search / copy ref"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}

// searchChrome is the number of lines around the result list
const searchChrome = 14

// SearchModel runs keyword searches over the whole image. Searching is
// explicit on enter since every search is a custody event.
type SearchModel struct {
	ViewState
	inspector Inspector
	input     textinput.Model
	spinner   spinner.Model
	results   *Pager[domain.SearchResult]
	lastQuery string
	searched  bool
	searching bool
}

// NewSearchModel creates a new search view model
func NewSearchModel(inspector Inspector) *SearchModel {
	input := textinput.New()
	input.Placeholder = "keyword, file name or hex string..."
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Success

	return &SearchModel{
		inspector: inspector,
		input:     input,
		spinner:   s,
		results:   NewPager[domain.SearchResult](10),
	}
}

// Init starts the cursor blink
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and results
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.input.Focus()
	m.results.Clear()
	m.lastQuery = ""
	m.searched = false
	m.searching = false
	m.ClearMessage()
}

type searchResultsMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		if msg.query != m.lastQuery {
			return m, nil
		}
		m.searching = false
		m.searched = true
		if msg.err != nil {
			m.SetError(msg.err)
			return m, nil
		}
		m.results.SetItems(msg.results)
		m.results.Select(0)
		return m, nil

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case copiedMsg:
		m.SetMessage(msg.status())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, switchTo(SwitchToBrowserMsg{})

		case key.Matches(msg, SearchKeys.Up):
			m.results.Up()
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			m.results.Down()
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			m.ClearMessage()
			query := m.input.Value()
			if query != m.lastQuery || !m.searched {
				return m, m.search(query)
			}
			if r, ok := m.results.Selected(); ok {
				return m, copyToClipboard(r.InodeItem)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *SearchModel) search(query string) tea.Cmd {
	m.lastQuery = query
	m.searching = true
	m.results.Clear()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		results, err := m.inspector.Search(context.Background(), query)
		return searchResultsMsg{query: query, results: results, err: err}
	})
}

// View renders the search view
func (m *SearchModel) View() string {
	m.results.Resize(m.listHeight(searchChrome))

	v := NewViewBuilder().Title("Search")
	v.Line(styles.InputFocused.Render(m.input.View()))
	v.BlankLine()

	switch {
	case m.searching:
		v.Line(m.spinner.View() + " Searching " + m.lastQuery)
	case !m.searched:
		v.Muted("Press enter to search names and raw content")
	case m.results.Len() == 0:
		v.Muted("No results found")
	default:
		v.Subtitle(fmt.Sprintf("%d results", m.results.Len()))
		start, rows := m.results.Visible()
		for i, r := range rows {
			v.Line(renderSearchResult(r, start+i == m.results.Cursor()))
		}
		if label := m.results.PageLabel(); label != "" {
			v.Muted(label)
		}
	}

	return v.Status(&m.ViewState).
		Help(SearchKeys.Up, SearchKeys.Select, SearchKeys.Cancel).
		String()
}

func renderSearchResult(r domain.SearchResult, selected bool) string {
	text := fmt.Sprintf("[%s] %s %s", r.InodeItem, r.Path, r.Size)
	if selected {
		return styles.NodeSelected.Render(text)
	}
	if r.Name == "" {
		return styles.MutedText.Render(text)
	}
	return text
}
