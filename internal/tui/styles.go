package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/bdhub/internal/theme"
)

var (
	appStyle = lipgloss.NewStyle().Foreground(theme.Text)

	headerAppStyle = lipgloss.NewStyle().Foreground(theme.Accent).Background(theme.Mantle).Bold(true)
	headerBarStyle = lipgloss.NewStyle().Foreground(theme.Text).Background(theme.Mantle)
	locationStyle  = lipgloss.NewStyle().Foreground(theme.Muted).Background(theme.Mantle)
	backHintStyle  = lipgloss.NewStyle().Foreground(theme.Focus).Background(theme.Mantle).Bold(true)

	statusBarStyle    = lipgloss.NewStyle().Foreground(theme.Success).Background(theme.Surface0)
	statusErrBarStyle = lipgloss.NewStyle().Foreground(theme.Error).Background(theme.Surface0)
	footerStyle       = lipgloss.NewStyle().Background(theme.Mantle)
)
