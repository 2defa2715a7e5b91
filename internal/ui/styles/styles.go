// Package styles holds the lipgloss palette the CLI renders with.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - coherent with charmbracelet style
var (
	Primary = lipgloss.Color("#7D56F4") // Purple
	Success = lipgloss.Color("#50FA7B") // Green
	Warning = lipgloss.Color("#FFB86C") // Orange
	Error   = lipgloss.Color("#FF5555") // Red
	Muted   = lipgloss.Color("#6272A4") // Muted blue-gray
)

var (
	// Title style for table headers and section titles
	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFDF5")).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// FormatMessageType renders a metadata message severity label.
func FormatMessageType(messageType string) string {
	switch messageType {
	case "warn":
		return WarningText.Render("warn")
	case "error":
		return ErrorText.Render("error")
	default:
		return MutedText.Render("say")
	}
}

// FormatMasterFlag renders the master-flag column of a plugin listing.
func FormatMasterFlag(isMaster bool) string {
	if isMaster {
		return SuccessText.Render("master")
	}
	return MutedText.Render("plugin")
}
