package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/rokuctl/internal/version"
)

// Application branding constants
const (
	AppName   = "ROKU REMOTE"
	GitHubURL = "github.com/muurk/rokuctl"
)

// Layout constants for responsive terminal width
const (
	MinTerminalWidth  = 72
	MinTerminalHeight = 20
	MaxContentWidth   = 120
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#6C3C97") // Roku purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#6C3C97")
	HighlightColor = lipgloss.Color("#43BF6D")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Pad buttons
	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	ActiveButtonStyle = ButtonStyle.
				BorderForeground(HighlightColor).
				Foreground(HighlightColor).
				Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	FocusedPanelStyle = PanelStyle.
				BorderForeground(PrimaryColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1)

	ErrorStatusStyle = StatusStyle.
				Foreground(ErrorColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	InputLabelStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	InfoKeyStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(22)
)

// AppVersion returns the application version from the version package
func AppVersion() string {
	return version.Get().Version
}

// IsInteractive reports whether stdin and stdout are both terminals
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalSize returns the current terminal size, clamped to the supported
// range. It falls back to the minimum when stdout is not a terminal.
func TerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, MinTerminalHeight + 4
	}
	return clampWidth(width), max(height, MinTerminalHeight)
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// renderStatus styles the status line, flagging failures in red
func renderStatus(status string, failed bool) string {
	if failed {
		return ErrorStatusStyle.Render("✗ " + status)
	}
	return StatusStyle.Render(status)
}

// RenderApplicationContainer frames content with the header and a footer
// holding the help text, filling the terminal.
func RenderApplicationContainer(address, content, footerText string, width, height int) string {
	width = clampWidth(width)

	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " " + AppVersion())

	right := SubtitleStyle.Render(GitHubURL)
	if address != "" {
		right = lipgloss.NewStyle().Foreground(HighlightColor).Render("● " + address)
	}

	header := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(width-4).
		Padding(0, 1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))

	footer := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Foreground(SubtleColor).
		Width(width-4).
		Padding(0, 1).
		Render(footerText)

	body := lipgloss.NewStyle().Width(width - 4).Render(content)

	inner := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	framed := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(width - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(width, max(height, lipgloss.Height(framed)), lipgloss.Left, lipgloss.Top, framed)
}
