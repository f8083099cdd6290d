package tui

import "github.com/charmbracelet/lipgloss"

// Colors used in the playback TUI.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#9CA3AF") // Light gray
)

// Styles holds the styles for the playback TUI.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Playing  lipgloss.Style
	Paused   lipgloss.Style
	BarFull  lipgloss.Style
	BarEmpty lipgloss.Style
	Active   lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Subtitle: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginBottom(1),
		Label: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(9),
		Value: lipgloss.NewStyle().
			Bold(true),
		Playing: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Paused: lipgloss.NewStyle().
			Foreground(ColorWarning),
		BarFull: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		BarEmpty: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Active: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Status: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true).
			MarginTop(1),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true).
			MarginTop(1),
		Help: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1),
	}
}
