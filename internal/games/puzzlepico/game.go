// Package puzzlepico is a lights-out puzzle on a 5x5 grid. Toggling a cell
// flips it and its four neighbours; the board is solved when every light is
// off.
package puzzlepico

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/theme"
)

const (
	ID    = "puzzle-pico"
	Alias = "pico"

	size = 5
	// scramble is how many random presses build a new board. Boards built
	// from presses are always solvable.
	scramble = 8
)

type board [size][size]bool

func (b *board) press(r, c int) {
	for _, d := range [][2]int{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		rr, cc := r+d[0], c+d[1]
		if rr < 0 || rr >= size || cc < 0 || cc >= size {
			continue
		}
		b[rr][cc] = !b[rr][cc]
	}
}

func (b *board) lit() int {
	n := 0
	for r := range b {
		for c := range b[r] {
			if b[r][c] {
				n++
			}
		}
	}
	return n
}

type Game struct {
	seed uint64

	mu     sync.Mutex
	c      lifecycle.Container
	rng    *rand.Rand
	board  board
	row    int
	col    int
	moves  int
	solved int
}

// New returns the game. A zero seed is taken from the clock on each mount.
func New(seed uint64) *Game {
	return &Game{seed: seed}
}

func (g *Game) ID() string   { return ID }
func (g *Game) Name() string { return "Puzzle Pico" }

func (g *Game) Mount(_ context.Context, c lifecycle.Container) error {
	g.mu.Lock()
	if g.c != nil {
		g.mu.Unlock()
		return lifecycle.ErrAlreadyMounted
	}
	seed := g.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g.c = c
	g.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	g.solved = 0
	g.newBoardLocked()
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

func (g *Game) newBoardLocked() {
	g.board = board{}
	for g.board.lit() == 0 {
		for i := 0; i < scramble; i++ {
			g.board.press(g.rng.IntN(size), g.rng.IntN(size))
		}
	}
	g.row, g.col, g.moves = size/2, size/2, 0
}

func (g *Game) move(dr, dc int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.row = min(size-1, max(0, g.row+dr))
	g.col = min(size-1, max(0, g.col+dc))
}

// toggle presses the cell under the cursor and reports whether that solved
// the board. Presses on a solved board are ignored.
func (g *Game) toggle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.board.lit() == 0 {
		return false
	}
	g.board.press(g.row, g.col)
	g.moves++
	if g.board.lit() == 0 {
		g.solved++
		return true
	}
	return false
}

func (g *Game) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng != nil {
		g.newBoardLocked()
	}
}

var (
	onStyle     = lipgloss.NewStyle().Foreground(theme.Yellow)
	offStyle    = lipgloss.NewStyle().Foreground(theme.Surface1)
	cursorStyle = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Lavender)
	textStyle   = lipgloss.NewStyle().Foreground(theme.Text)
	winStyle    = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(theme.Muted)
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
	case "up", "k":
		v.g.move(-1, 0)
	case "down", "j":
		v.g.move(1, 0)
	case "left", "h":
		v.g.move(0, -1)
	case "right", "l":
		v.g.move(0, 1)
	case " ", "space", "enter":
		v.g.toggle()
	case "r":
		v.g.reset()
	}
	return nil
}

func (v *view) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	v.g.mu.Lock()
	b, row, col, moves, solved := v.g.board, v.g.row, v.g.col, v.g.moves, v.g.solved
	v.g.mu.Unlock()

	var out strings.Builder
	out.WriteString(textStyle.Render(fmt.Sprintf("moves %d · solved %d", moves, solved)))
	out.WriteString("\n\n")
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			glyph, style := " ○ ", offStyle
			if b[r][c] {
				glyph, style = " ● ", onStyle
			}
			if r == row && c == col {
				style = cursorStyle
			}
			out.WriteString(style.Render(glyph))
		}
		out.WriteString("\n")
	}
	out.WriteString("\n")
	if b.lit() == 0 {
		out.WriteString(winStyle.Render(fmt.Sprintf("All lights off in %d moves! r for a new board", moves)))
	} else {
		out.WriteString(hintStyle.Render("arrows move · space toggles · r new board"))
	}
	return theme.ClipHeight(out.String(), height)
}
