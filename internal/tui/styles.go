package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Status icons
	iconPending   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("○")
	iconComplete  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("✓")
	iconError     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	iconCancelled = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("⊘")

	// Styles
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Underline(true)
)

// StatusIcon returns the icon for a fetch status.
func StatusIcon(status Status, spinnerFrame string) string {
	switch status {
	case StatusPending:
		return iconPending
	case StatusRunning:
		return spinnerStyle.Render(spinnerFrame)
	case StatusComplete:
		return iconComplete
	case StatusError:
		return iconError
	case StatusCancelled:
		return iconCancelled
	default:
		return iconPending
	}
}
