package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"forensdesk/internal/adapters/tui/views"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewContent
	ViewCarve
	ViewSearch
	ViewConfirmClose
	ViewHelp
)

// App is the main TUI application model
type App struct {
	inspector views.Inspector

	state   ViewState
	browser *views.BrowserModel
	content *views.ContentModel
	carve   *views.CarveModel
	search  *views.SearchModel
	confirm *views.CloseEvidenceModel
	help    *views.HelpModel

	// ClosedMessage is set when the evidence was closed before quitting
	ClosedMessage string

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(inspector views.Inspector) *App {
	return &App{
		inspector: inspector,
		state:     ViewBrowser,
		browser:   views.NewBrowserModel(inspector),
		content:   views.NewContentModel(inspector),
		carve:     views.NewCarveModel(inspector),
		search:    views.NewSearchModel(inspector),
		confirm:   views.NewCloseEvidenceModel(inspector),
		help:      views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.content.SetSize(msg.Width, msg.Height)
		a.carve.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.confirm.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToContentMsg:
		a.state = ViewContent
		return a, a.content.SetNode(msg.Node)

	case views.SwitchToCarveMsg:
		a.state = ViewCarve
		return a, nil

	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToConfirmCloseMsg:
		a.state = ViewConfirmClose
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, nil

	case views.EvidenceClosedMsg:
		a.ClosedMessage = msg.Message
		return a, tea.Quit
	}

	// Keys go to the active view only. Everything else is a result of
	// background work and reaches every view, each ignoring what is not
	// its own.
	if _, ok := msg.(tea.KeyMsg); ok {
		_, cmd := a.active().Update(msg)
		return a, cmd
	}

	var cmds []tea.Cmd
	for _, v := range a.all() {
		_, cmd := v.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

type updater interface {
	Update(tea.Msg) (tea.Model, tea.Cmd)
}

func (a *App) active() updater {
	switch a.state {
	case ViewContent:
		return a.content
	case ViewCarve:
		return a.carve
	case ViewSearch:
		return a.search
	case ViewConfirmClose:
		return a.confirm
	case ViewHelp:
		return a.help
	default:
		return a.browser
	}
}

func (a *App) all() []updater {
	return []updater{a.browser, a.content, a.carve, a.search, a.confirm, a.help}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewContent:
		return a.content.View()
	case ViewCarve:
		return a.carve.View()
	case ViewSearch:
		return a.search.View()
	case ViewConfirmClose:
		return a.confirm.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
