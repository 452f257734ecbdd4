// Package klotski is the Huarong Dao sliding block puzzle: move the 2x2
// block to the exit at the bottom centre of a 4x5 board.
package klotski

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/theme"
)

const (
	ID    = "bang-klotski"
	Alias = "klotski"

	width  = 4
	height = 5
	exitX  = 1
	exitY  = 3
)

type piece struct {
	name string
	x, y int
	w, h int
}

func (p piece) covers(x, y int) bool {
	return x >= p.x && x < p.x+p.w && y >= p.y && y < p.y+p.h
}

// layout is the classic opening; piece 0 is the 2x2 block.
func layout() []piece {
	return []piece{
		{name: "Kasumi", x: 1, y: 0, w: 2, h: 2},
		{name: "Arisa", x: 0, y: 0, w: 1, h: 2},
		{name: "Tae", x: 3, y: 0, w: 1, h: 2},
		{name: "Rimi", x: 0, y: 2, w: 1, h: 2},
		{name: "Saaya", x: 3, y: 2, w: 1, h: 2},
		{name: "Ran", x: 1, y: 2, w: 2, h: 1},
		{name: "Moca", x: 1, y: 3, w: 1, h: 1},
		{name: "Himari", x: 2, y: 3, w: 1, h: 1},
		{name: "Tomoe", x: 0, y: 4, w: 1, h: 1},
		{name: "Tsugumi", x: 3, y: 4, w: 1, h: 1},
	}
}

type Game struct {
	mu       sync.Mutex
	c        lifecycle.Container
	pieces   []piece
	selected int
	moves    int
}

func New() *Game {
	return &Game{pieces: layout()}
}

func (g *Game) ID() string   { return ID }
func (g *Game) Name() string { return "Bang Klotski" }

func (g *Game) Mount(_ context.Context, c lifecycle.Container) error {
	g.mu.Lock()
	if g.c != nil {
		g.mu.Unlock()
		return lifecycle.ErrAlreadyMounted
	}
	g.c = c
	g.resetLocked()
	g.mu.Unlock()
	c.Replace(&view{g: g})
	return nil
}

func (g *Game) Unmount(context.Context) error {
	g.mu.Lock()
	c := g.c
	g.c = nil
	g.mu.Unlock()
	if c != nil {
		c.Clear()
	}
	return nil
}

func (g *Game) resetLocked() {
	g.pieces = layout()
	g.selected = 0
	g.moves = 0
}

func (g *Game) reset() {
	g.mu.Lock()
	g.resetLocked()
	g.mu.Unlock()
}

func (g *Game) cycle(step int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.pieces)
	g.selected = ((g.selected+step)%n + n) % n
}

// slide moves the selected piece one cell and reports whether it moved.
func (g *Game) slide(dx, dy int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.solvedLocked() {
		return false
	}
	p := g.pieces[g.selected]
	p.x += dx
	p.y += dy
	if p.x < 0 || p.y < 0 || p.x+p.w > width || p.y+p.h > height {
		return false
	}
	for i, other := range g.pieces {
		if i != g.selected && overlaps(p, other) {
			return false
		}
	}
	g.pieces[g.selected] = p
	g.moves++
	return true
}

func (g *Game) solvedLocked() bool {
	return g.pieces[0].x == exitX && g.pieces[0].y == exitY
}

func overlaps(a, b piece) bool {
	return a.x < b.x+b.w && b.x < a.x+a.w && a.y < b.y+b.h && b.y < a.y+a.h
}

const cellW = 8

var (
	bigStyle   = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Pink).Bold(true)
	tallStyle  = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Sky)
	wideStyle  = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Peach)
	smallStyle = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Green)
	selStyle   = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Lavender).Bold(true)
	emptyStyle = lipgloss.NewStyle().Foreground(theme.Surface1)
	frameStyle = lipgloss.NewStyle().Foreground(theme.Border)
	infoStyle  = lipgloss.NewStyle().Foreground(theme.Text)
	winStyle   = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(theme.Muted)
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
	case "tab":
		v.g.cycle(1)
	case "shift+tab":
		v.g.cycle(-1)
	case "up", "k":
		v.g.slide(0, -1)
	case "down", "j":
		v.g.slide(0, 1)
	case "left", "h":
		v.g.slide(-1, 0)
	case "right", "l":
		v.g.slide(1, 0)
	case "r":
		v.g.reset()
	}
	return nil
}

func styleFor(p piece) lipgloss.Style {
	switch {
	case p.w == 2 && p.h == 2:
		return bigStyle
	case p.h == 2:
		return tallStyle
	case p.w == 2:
		return wideStyle
	default:
		return smallStyle
	}
}

func (v *view) View(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	v.g.mu.Lock()
	pieces := append([]piece(nil), v.g.pieces...)
	selected, moves, solved := v.g.selected, v.g.moves, v.g.solvedLocked()
	v.g.mu.Unlock()

	var out strings.Builder
	out.WriteString(infoStyle.Render(fmt.Sprintf("moves %d · selected %s", moves, pieces[selected].name)))
	out.WriteString("\n")
	out.WriteString(frameStyle.Render("┌" + strings.Repeat("─", width*cellW) + "┐"))
	out.WriteString("\n")
	for y := 0; y < height; y++ {
		out.WriteString(frameStyle.Render("│"))
		for x := 0; x < width; x++ {
			owner := -1
			for i, p := range pieces {
				if p.covers(x, y) {
					owner = i
					break
				}
			}
			if owner < 0 {
				out.WriteString(emptyStyle.Render(strings.Repeat(" ", cellW)))
				continue
			}
			p := pieces[owner]
			label := ""
			if x == p.x && y == p.y {
				label = p.name
			}
			style := styleFor(p)
			if owner == selected {
				style = selStyle
			}
			out.WriteString(style.Render(fmt.Sprintf("%-*.*s", cellW, cellW, " "+label)))
		}
		out.WriteString(frameStyle.Render("│"))
		out.WriteString("\n")
	}
	gap := strings.Repeat(" ", 2*cellW)
	side := strings.Repeat("─", cellW)
	out.WriteString(frameStyle.Render("└" + side + gap + side + "┘"))
	out.WriteString("\n")
	if solved {
		out.WriteString(winStyle.Render(fmt.Sprintf("%s escaped in %d moves! r to play again", pieces[0].name, moves)))
	} else {
		out.WriteString(hintStyle.Render("tab select · arrows slide · r reset"))
	}
	return theme.ClipHeight(out.String(), h)
}
