package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/bdhub/internal/theme"
)

func renderFooter(a *App) string {
	bindings := a.keys.BindingsForScope(a.scope())
	bg := theme.Mantle
	keyStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Background(bg)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted).Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	seen := make(map[string]bool, len(bindings))
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if len(b.Keys) == 0 || seen[b.Description] || !a.available(b.Action) {
			continue
		}
		seen[b.Description] = true
		kb := key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Description))
		h := kb.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(h.Key)+space+descStyle.Render(h.Desc))
	}
	line := strings.Join(parts, sep)
	if line == "" {
		line = lipgloss.NewStyle().Foreground(theme.Muted).Background(bg).Render("No shortcuts")
	}
	return theme.Bar(footerStyle, a.width, line, bg)
}

// available hides history hints that would do nothing.
func (a *App) available(action string) bool {
	switch action {
	case ActionBack:
		return a.router.CanBack()
	case ActionForward:
		return a.router.CanForward()
	}
	return true
}

func renderStatusBar(a *App) string {
	msg := strings.TrimSpace(a.status)
	if msg == "" {
		msg = "Ready"
	}
	if a.statusErr {
		return theme.Bar(statusErrBarStyle, a.width, msg, theme.Surface0)
	}
	return theme.Bar(statusBarStyle, a.width, msg, theme.Surface0)
}
