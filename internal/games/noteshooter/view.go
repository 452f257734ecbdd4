package noteshooter

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/bdhub/internal/theme"
)

var (
	laneKeys   = [lanes]string{"f", "j"}
	noteStyle  = [lanes]lipgloss.Style{lipgloss.NewStyle().Foreground(theme.Pink), lipgloss.NewStyle().Foreground(theme.Sky)}
	railStyle  = lipgloss.NewStyle().Foreground(theme.Border)
	hitStyle   = lipgloss.NewStyle().Foreground(theme.Yellow).Bold(true)
	flashStyle = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Yellow).Bold(true)
	statStyle  = lipgloss.NewStyle().Foreground(theme.Text)
	mutedStyle = lipgloss.NewStyle().Foreground(theme.Muted)
	overStyle  = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
)

type view struct {
	g *Game
}

func (v *view) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "f":
		v.g.strike(0)
	case "j":
		v.g.strike(1)
	case "r":
		v.g.restart()
	}
	return nil
}

func (v *view) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	s := v.g.snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		statStyle.Render(fmt.Sprintf("score %d", s.score)),
		statStyle.Render(fmt.Sprintf("combo %d", s.combo)),
		mutedStyle.Render(fmt.Sprintf("misses %d", s.misses)),
		mutedStyle.Render(fmt.Sprintf("%ds left", int(s.remaining.Seconds()))),
	)

	var grid [rows][lanes]bool
	for _, n := range s.notes {
		grid[n.row][n.lane] = true
	}
	for r := 0; r < rows; r++ {
		b.WriteString(railStyle.Render("│"))
		for lane := 0; lane < lanes; lane++ {
			cell := "     "
			switch {
			case grid[r][lane]:
				cell = noteStyle[lane].Render(" ███ ")
			case r == hitRow:
				cell = hitStyle.Render("─────")
			}
			b.WriteString(cell)
			b.WriteString(railStyle.Render("│"))
		}
		b.WriteString("\n")
	}
	b.WriteString(" ")
	for lane := 0; lane < lanes; lane++ {
		label := fmt.Sprintf("  %s  ", strings.ToUpper(laneKeys[lane]))
		if s.flash[lane] > 0 {
			b.WriteString(flashStyle.Render(label))
		} else {
			b.WriteString(mutedStyle.Render(label))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n")

	switch {
	case s.over:
		b.WriteString(overStyle.Render(fmt.Sprintf("Round over! score %d, best combo %d. r to play again", s.score, s.best)))
	case s.paused:
		b.WriteString(mutedStyle.Render("paused"))
	default:
		b.WriteString(mutedStyle.Render("f / j to hit · r restart"))
	}
	return theme.ClipHeight(b.String(), height)
}
