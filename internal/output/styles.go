package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: paths, module names, features.
	ColorCyan = lipgloss.Color("14")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleCommand styles shell commands the user is told to run.
	StyleCommand = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatNextSteps renders a numbered list of shell commands under a heading.
func FormatNextSteps(heading string, commands []string) string {
	var b strings.Builder
	b.WriteString(StyleSummary.Render(heading))
	b.WriteString("\n")
	for _, c := range commands {
		b.WriteString("  ")
		b.WriteString(StyleDim.Render("$"))
		b.WriteString(" ")
		b.WriteString(StyleCommand.Render(c))
		b.WriteString("\n")
	}
	return b.String()
}
