package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Accent  = lipgloss.Color("#2563EB")
	Good    = lipgloss.Color("#10B981")
	Dim     = lipgloss.Color("#6B7280")
	Caution = lipgloss.Color("#F59E0B")
	Bad     = lipgloss.Color("#EF4444")

	imageColor     = lipgloss.Color("#8B5CF6")
	partitionColor = lipgloss.Color("#F97316")
	directoryColor = lipgloss.Color("#60A5FA")
	systemColor    = lipgloss.Color("#9CA3AF") // $OrphanFiles, $MFT and other metadata entries
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true)
}

// Frame and headings
var (
	App       = lipgloss.NewStyle().Padding(1, 2)
	Title     = bold(Accent).MarginBottom(1)
	Subtitle  = fg(Dim).Italic(true)
	MutedText = fg(Dim)
)

// Evidence tree
var (
	NodeImage     = bold(imageColor)
	NodePartition = bold(partitionColor)
	NodeDirectory = fg(directoryColor)
	NodeSystem    = fg(systemColor).Italic(true)
	NodeFile      = lipgloss.NewStyle()
	NodeSelected  = bold(lipgloss.Color("#FFFFFF")).Background(Accent)

	TreeBranch    = fg(Dim)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "
)

// Status and input
var (
	StatusWarning = fg(lipgloss.Color("#000000")).Background(Caution).Padding(0, 1)
	Success       = bold(Good)
	ErrorMsg      = bold(Bad)
	InputLabel    = bold(Good)
	InputFocused  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Good).
			Padding(0, 1)
)

// Key help
var (
	HelpKey       = bold(Accent)
	HelpDesc      = fg(Dim)
	HelpSeparator = fg(Dim).SetString(" • ")
)

// File content
var (
	HexOffset    = fg(Dim)
	ContentFrame = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Dim)
)
