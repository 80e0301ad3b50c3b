package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
type Style struct {
	Text      lipgloss.Style
	Heading   lipgloss.Style
	Link      lipgloss.Style
	Gutter    lipgloss.Style
	Selection lipgloss.Style
	Cursor    lipgloss.Style

	Image       lipgloss.Style
	BrokenImage lipgloss.Style
	Handle      lipgloss.Style

	Toolbar       lipgloss.Style
	Button        lipgloss.Style
	ButtonActive  lipgloss.Style
	Status        lipgloss.Style
	Error         lipgloss.Style
	Dialog        lipgloss.Style
	DialogTitle   lipgloss.Style
	DialogHelp    lipgloss.Style
	DialogInvalid lipgloss.Style
}

func DefaultStyle() Style {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		Text:      lipgloss.NewStyle(),
		Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")),
		Link:      lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")).Underline(true),
		Gutter:    muted,
		Selection: lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:    lipgloss.NewStyle().Reverse(true),

		Image:       lipgloss.NewStyle().Foreground(lipgloss.Color("109")),
		BrokenImage: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Strikethrough(true),
		Handle:      muted,

		Toolbar:       lipgloss.NewStyle(),
		Button:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		ButtonActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25")).Bold(true),
		Status:        muted,
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Dialog:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		DialogTitle:   lipgloss.NewStyle().Bold(true),
		DialogHelp:    muted,
		DialogInvalid: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
