package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor = lipgloss.Color("#00D4FF") // Cyan
	AccentColor  = lipgloss.Color("#7C3AED") // Purple
	SuccessColor = lipgloss.Color("#10B981") // Green
	ErrorColor   = lipgloss.Color("#EF4444") // Red
	TextColor    = lipgloss.Color("#E5E7EB") // Light gray text
	MutedColor   = lipgloss.Color("#9CA3AF") // Muted text
	BorderColor  = lipgloss.Color("#4B5563") // Border gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	PaneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedPaneStyle = PaneStyle.
				BorderForeground(PrimaryColor)

	UserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SelectedEventStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)

	EventStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)
)
