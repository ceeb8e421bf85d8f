package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"forensdesk/internal/adapters/tui/styles"
	"forensdesk/internal/domain"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Copy     key.Binding
	Carve    key.Binding
	Search   key.Binding
	Close    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup/pgdn", "page"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/l", "collapse/expand"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy ref"),
	),
	Carve: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "carve"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Close: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "close evidence"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// browserChrome is the number of lines around the tree
const browserChrome = 9

// BrowserModel is the model for the partition and directory tree
type BrowserModel struct {
	ViewState
	inspector Inspector
	root      *Node
	rows      *Pager[*Node]
	wiped     bool
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(inspector Inspector) *BrowserModel {
	return &BrowserModel{
		inspector: inspector,
		rows:      NewPager[*Node](20),
	}
}

// Init loads the partition table
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadRoot
}

func (m *BrowserModel) loadRoot() tea.Msg {
	res, err := m.inspector.Partitions(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return rootLoadedMsg{root: newImageRoot(m.inspector.Describe(), res), wiped: res.Wiped}
}

type rootLoadedMsg struct {
	root  *Node
	wiped bool
}

type childrenLoadedMsg struct {
	node    *Node
	entries []domain.DirectoryEntry
}

type errMsg struct {
	err error
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case rootLoadedMsg:
		m.root = msg.root
		m.wiped = msg.wiped
		m.flatten()
		if len(m.root.Children) == 1 {
			part := m.root.Children[0]
			part.Expanded = true
			return m, m.loadChildren(part)
		}
		return m, nil

	case childrenLoadedMsg:
		msg.node.SetEntries(msg.entries)
		m.flatten()
		return m, nil

	case errMsg:
		m.SetError(msg.err)
		return m, nil

	case copiedMsg:
		m.SetMessage(msg.status())
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		m.rows.Up()

	case key.Matches(msg, BrowserKeys.Down):
		m.rows.Down()

	case key.Matches(msg, BrowserKeys.PageUp):
		m.rows.PageUp()

	case key.Matches(msg, BrowserKeys.PageDown):
		m.rows.PageDown()

	case key.Matches(msg, BrowserKeys.Left):
		node, ok := m.rows.Selected()
		if !ok {
			return nil
		}
		if node.Expanded && node.Kind != NodeImage {
			node.Expanded = false
			m.flatten()
		} else if node.Parent != nil {
			m.rows.SelectFunc(func(n *Node) bool { return n == node.Parent })
		}

	case key.Matches(msg, BrowserKeys.Right), key.Matches(msg, BrowserKeys.Enter):
		node, ok := m.rows.Selected()
		if !ok {
			return nil
		}
		if node.Kind == NodeFile {
			if key.Matches(msg, BrowserKeys.Enter) {
				return switchTo(SwitchToContentMsg{Node: node})
			}
			return nil
		}
		if !node.Expanded {
			node.Expanded = true
			if !node.Loaded {
				return m.loadChildren(node)
			}
			m.flatten()
		} else if key.Matches(msg, BrowserKeys.Enter) && node.Kind != NodeImage {
			node.Expanded = false
			m.flatten()
		}

	case key.Matches(msg, BrowserKeys.Copy):
		if node, ok := m.rows.Selected(); ok {
			return copyToClipboard(node.Reference())
		}

	case key.Matches(msg, BrowserKeys.Carve):
		return switchTo(SwitchToCarveMsg{})

	case key.Matches(msg, BrowserKeys.Search):
		return switchTo(SwitchToSearchMsg{})

	case key.Matches(msg, BrowserKeys.Close):
		return switchTo(SwitchToConfirmCloseMsg{})

	case key.Matches(msg, BrowserKeys.Help):
		return switchTo(SwitchToHelpMsg{})
	}
	return nil
}

func (m *BrowserModel) loadChildren(node *Node) tea.Cmd {
	offset, inode := node.Offset, node.DirInode()
	return func() tea.Msg {
		entries, err := m.inspector.List(context.Background(), offset, inode)
		if err != nil {
			return errMsg{fmt.Errorf("%s: %w", node.Name, err)}
		}
		return childrenLoadedMsg{node: node, entries: entries}
	}
}

// flatten rebuilds the visible rows, keeping the cursor on the node it was on
func (m *BrowserModel) flatten() {
	if m.root == nil {
		return
	}
	selected, ok := m.rows.Selected()
	m.rows.SetItems(m.root.Flatten())
	if ok {
		m.rows.SelectFunc(func(n *Node) bool { return n == selected })
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.root == nil {
		if m.Message != "" {
			return NewViewBuilder().Status(&m.ViewState).String()
		}
		return "Loading..."
	}

	m.rows.Resize(m.listHeight(browserChrome))

	v := NewViewBuilder().Title("forensdesk")
	if w := m.inspector.Warning(); w != "" {
		v.Line(styles.StatusWarning.Render(w))
	}
	v.Subtitle(m.root.Name)

	if m.wiped {
		v.Muted("No partition table or file system found. Try carving (c) or search (/).")
	}

	start, nodes := m.rows.Visible()
	for i, node := range nodes {
		v.Line(m.renderNode(node, start+i == m.rows.Cursor()))
	}
	if label := m.rows.PageLabel(); label != "" {
		v.Muted(label)
	}

	return v.Status(&m.ViewState).
		Help(BrowserKeys.Up, BrowserKeys.Left, BrowserKeys.Enter, BrowserKeys.Copy,
			BrowserKeys.Carve, BrowserKeys.Search, BrowserKeys.Help, BrowserKeys.Quit).
		String()
}

func (m *BrowserModel) renderNode(node *Node, selected bool) string {
	indent := strings.Repeat("  ", node.Depth())

	var prefix string
	switch {
	case !node.Expandable():
		prefix = styles.TreeLeaf
	case node.Expanded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.Name
	if node.Kind == NodeFile || node.Kind == NodeDirectory {
		text = fmt.Sprintf("%-32s %8d %9s  %s", node.Name, node.Inode, node.Size, node.Modified)
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = styles.NodeSelected
	case node.Kind == NodeImage:
		style = styles.NodeImage
	case node.Kind == NodePartition:
		style = styles.NodePartition
	case node.IsSystem():
		style = styles.NodeSystem
	case node.Kind == NodeDirectory:
		style = styles.NodeDirectory
	default:
		style = styles.NodeFile
	}

	return indent + styles.TreeBranch.Render(prefix) + style.Render(text)
}

// Reload drops the tree and reads the partition table again
func (m *BrowserModel) Reload() tea.Cmd {
	m.root = nil
	m.rows.Clear()
	return m.loadRoot
}

func switchTo(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Messages for view switching
type SwitchToContentMsg struct {
	Node *Node
}

type SwitchToCarveMsg struct{}

type SwitchToSearchMsg struct{}

type SwitchToConfirmCloseMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}
