// Package theme holds the Catppuccin Mocha palette and the small rendering
// helpers shared by the hub chrome, the catalog and the games.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Catppuccin Mocha, https://catppuccin.com/palette
const (
	Pink     lipgloss.Color = "#f5c2e7"
	Mauve    lipgloss.Color = "#cba6f7"
	Red      lipgloss.Color = "#f38ba8"
	Peach    lipgloss.Color = "#fab387"
	Yellow   lipgloss.Color = "#f9e2af"
	Green    lipgloss.Color = "#a6e3a1"
	Teal     lipgloss.Color = "#94e2d5"
	Sky      lipgloss.Color = "#89dceb"
	Blue     lipgloss.Color = "#89b4fa"
	Lavender lipgloss.Color = "#b4befe"

	Text     lipgloss.Color = "#cdd6f4"
	Subtext0 lipgloss.Color = "#a6adc8"
	Overlay1 lipgloss.Color = "#7f849c"
	Overlay0 lipgloss.Color = "#6c7086"
	Surface2 lipgloss.Color = "#585b70"
	Surface1 lipgloss.Color = "#45475a"
	Surface0 lipgloss.Color = "#313244"
	Base     lipgloss.Color = "#1e1e2e"
	Mantle   lipgloss.Color = "#181825"
)

// Semantic aliases.
const (
	Accent  = Pink
	Focus   = Lavender
	Success = Green
	Error   = Red
	Warning = Yellow
	Muted   = Subtext0
	Border  = Surface2
)

// Palette returns every palette color.
func Palette() []lipgloss.Color {
	return []lipgloss.Color{
		Pink, Mauve, Red, Peach, Yellow, Green, Teal, Sky, Blue, Lavender,
		Text, Subtext0, Overlay1, Overlay0, Surface2, Surface1, Surface0, Base, Mantle,
	}
}

// Bar renders text as a single full-width line on bg.
func Bar(style lipgloss.Style, width int, text string, bg lipgloss.TerminalColor) string {
	width = max(1, width)
	line := strings.ReplaceAll(text, "\n", " ")
	line = ansi.Truncate(line, width, "")
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return style.
		Background(bg).
		Width(width).
		MaxWidth(width).
		Render(line)
}

func ClipHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func TrimToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "")
}

// Center places block in the middle of a width x height box.
func Center(block string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
