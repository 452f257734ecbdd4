// Package noteshooter is a two-lane rhythm game: notes fall towards a hit
// line and the player strikes them with f and j before the round ends.
package noteshooter

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jask/bdhub/internal/lifecycle"
)

const (
	ID    = "note-shooter"
	Alias = "shoot"

	lanes  = 2
	rows   = 12
	hitRow = rows - 1

	basePoints  = 100
	comboPoints = 10
)

type Options struct {
	// Round is the length of one round. Zero means 30 seconds.
	Round time.Duration
	// Tick is how often notes advance one row. Zero means 150ms.
	Tick time.Duration
	// Seed fixes the note pattern; zero seeds from the clock.
	Seed uint64
}

func (o Options) withDefaults() Options {
	if o.Round <= 0 {
		o.Round = 30 * time.Second
	}
	if o.Tick <= 0 {
		o.Tick = 150 * time.Millisecond
	}
	return o
}

// clockSeed seeds rounds when no fixed seed is configured.
var clockSeed = func() uint64 { return uint64(time.Now().UnixNano()) }

func (o Options) seed() uint64 {
	if o.Seed != 0 {
		return o.Seed
	}
	return clockSeed()
}

type note struct {
	lane int
	row  int
}

// Game implements lifecycle.Module, lifecycle.Pauser and lifecycle.Resumer.
type Game struct {
	opts Options

	mu      sync.Mutex
	c       lifecycle.Container
	cancel  context.CancelFunc
	done    chan struct{}
	paused  bool
	rng     *rand.Rand
	notes   []note
	score   int
	combo   int
	best    int
	misses  int
	elapsed time.Duration
	over    bool
	flash   [lanes]int
}

func New(opts Options) *Game {
	return &Game{opts: opts.withDefaults()}
}

func (g *Game) ID() string   { return ID }
func (g *Game) Name() string { return "Note Shooter" }

func (g *Game) Mount(ctx context.Context, c lifecycle.Container) error {
	g.mu.Lock()
	if g.c != nil {
		g.mu.Unlock()
		return lifecycle.ErrAlreadyMounted
	}
	g.c = c
	g.paused = false
	seed := g.opts.seed()
	g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g.resetLocked()
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g.cancel = cancel
	g.done = make(chan struct{})
	done := g.done
	g.mu.Unlock()

	c.Replace(&view{g: g})
	go g.loop(loopCtx, done)
	return nil
}

// Unmount stops the ticker goroutine and waits for it before clearing.
func (g *Game) Unmount(context.Context) error {
	g.mu.Lock()
	c := g.c
	cancel, done := g.cancel, g.done
	g.c, g.cancel, g.done = nil, nil, nil
	g.mu.Unlock()
	if c == nil {
		return nil
	}
	if cancel != nil {
		cancel()
		<-done
	}
	c.Clear()
	return nil
}

func (g *Game) Pause() {
	g.mu.Lock()
	g.paused = true
	g.mu.Unlock()
}

func (g *Game) Resume() {
	g.mu.Lock()
	g.paused = false
	g.mu.Unlock()
}

func (g *Game) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if g.step() {
				g.invalidate()
			}
		}
	}
}

func (g *Game) invalidate() {
	g.mu.Lock()
	c := g.c
	g.mu.Unlock()
	if c != nil {
		c.Invalidate()
	}
}

// step advances the round by one tick and reports whether anything changed.
func (g *Game) step() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused || g.over || g.rng == nil {
		return false
	}
	g.elapsed += g.opts.Tick
	for i := range g.flash {
		if g.flash[i] > 0 {
			g.flash[i]--
		}
	}

	kept := g.notes[:0]
	for _, n := range g.notes {
		n.row++
		if n.row > hitRow {
			g.misses++
			g.combo = 0
			continue
		}
		kept = append(kept, n)
	}
	g.notes = kept

	if g.rng.IntN(3) == 0 {
		g.notes = append(g.notes, note{lane: g.rng.IntN(lanes), row: 0})
	}
	if g.elapsed >= g.opts.Round {
		g.over = true
		g.notes = nil
	}
	return true
}

// strike hits the lowest note in lane if it is on or just above the hit line.
func (g *Game) strike(lane int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over || g.paused || lane < 0 || lane >= lanes {
		return false
	}
	g.flash[lane] = 2
	best := -1
	for i, n := range g.notes {
		if n.lane != lane || n.row < hitRow-1 {
			continue
		}
		if best < 0 || n.row > g.notes[best].row {
			best = i
		}
	}
	if best < 0 {
		g.combo = 0
		return false
	}
	g.notes = append(g.notes[:best], g.notes[best+1:]...)
	g.score += basePoints + g.combo*comboPoints
	g.combo++
	g.best = max(g.best, g.combo)
	return true
}

func (g *Game) restart() {
	g.mu.Lock()
	g.resetLocked()
	g.mu.Unlock()
}

func (g *Game) resetLocked() {
	g.notes = nil
	g.score, g.combo, g.best, g.misses = 0, 0, 0, 0
	g.elapsed = 0
	g.over = false
	g.flash = [lanes]int{}
}

type snapshot struct {
	notes     []note
	score     int
	combo     int
	best      int
	misses    int
	remaining time.Duration
	over      bool
	paused    bool
	flash     [lanes]int
}

func (g *Game) snapshot() snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return snapshot{
		notes:     append([]note(nil), g.notes...),
		score:     g.score,
		combo:     g.combo,
		best:      g.best,
		misses:    g.misses,
		remaining: max(0, g.opts.Round-g.elapsed),
		over:      g.over,
		paused:    g.paused,
		flash:     g.flash,
	}
}
