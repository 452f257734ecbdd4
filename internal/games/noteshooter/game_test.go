package noteshooter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/bdhub/internal/lifecycle"
)

// quiet uses an hour-long tick so the ticker never fires and tests drive
// step by hand.
func quiet() Options {
	return Options{Round: 10 * time.Hour, Tick: time.Hour, Seed: 42}
}

func mounted(t *testing.T, opts Options) (*Game, *lifecycle.Region) {
	t.Helper()
	g := New(opts)
	region := lifecycle.NewRegion(nil)
	if err := g.Mount(context.Background(), region); err != nil {
		t.Fatalf("mount: %v", err)
	}
	t.Cleanup(func() { _ = g.Unmount(context.Background()) })
	return g, region
}

func TestMountRendersAndUnmountClears(t *testing.T) {
	g, region := mounted(t, quiet())
	if region.Empty() {
		t.Fatalf("mount should render into the container")
	}
	if !strings.Contains(region.Render(80, 24), "score 0") {
		t.Fatalf("hud missing: %q", region.Render(80, 24))
	}
	if err := g.Unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if !region.Empty() {
		t.Fatalf("unmount must clear the container")
	}
}

func TestUnmountWithoutMountIsNoop(t *testing.T) {
	g := New(quiet())
	if err := g.Unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
}

func TestDoubleMountFails(t *testing.T) {
	g, _ := mounted(t, quiet())
	err := g.Mount(context.Background(), lifecycle.NewRegion(nil))
	if !errors.Is(err, lifecycle.ErrAlreadyMounted) {
		t.Fatalf("err = %v", err)
	}
}

func TestRemountAfterUnmount(t *testing.T) {
	g, _ := mounted(t, quiet())
	if err := g.Unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	region := lifecycle.NewRegion(nil)
	if err := g.Mount(context.Background(), region); err != nil {
		t.Fatalf("remount: %v", err)
	}
	if region.Empty() {
		t.Fatalf("remount should render")
	}
}

func firstDraw(t *testing.T, g *Game) uint64 {
	t.Helper()
	region := lifecycle.NewRegion(nil)
	if err := g.Mount(context.Background(), region); err != nil {
		t.Fatalf("mount: %v", err)
	}
	g.mu.Lock()
	v := g.rng.Uint64()
	g.mu.Unlock()
	if err := g.Unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	return v
}

func TestUnseededRoundsDiffer(t *testing.T) {
	var n uint64
	prev := clockSeed
	clockSeed = func() uint64 { n++; return n }
	t.Cleanup(func() { clockSeed = prev })

	g := New(Options{Round: time.Hour, Tick: time.Hour})
	if firstDraw(t, g) == firstDraw(t, g) {
		t.Fatalf("each mount without a seed should draw a new note pattern")
	}

	fixed := New(quiet())
	if firstDraw(t, fixed) != firstDraw(t, fixed) {
		t.Fatalf("a fixed seed should replay the same pattern")
	}
}

func TestStrikeScoresAndBuildsCombo(t *testing.T) {
	g, region := mounted(t, quiet())
	g.mu.Lock()
	g.notes = []note{{lane: 0, row: hitRow}, {lane: 0, row: hitRow - 1}, {lane: 1, row: 2}}
	g.mu.Unlock()

	region.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	region.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
	s := g.snapshot()
	if s.score != basePoints+basePoints+comboPoints || s.combo != 2 {
		t.Fatalf("score=%d combo=%d", s.score, s.combo)
	}

	// the lane 1 note is too high to hit, so the combo breaks.
	region.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	s = g.snapshot()
	if s.combo != 0 || s.best != 2 || len(s.notes) != 1 {
		t.Fatalf("combo=%d best=%d notes=%d", s.combo, s.best, len(s.notes))
	}
}

func TestMissedNotesCount(t *testing.T) {
	g, _ := mounted(t, quiet())
	g.mu.Lock()
	g.notes = []note{{lane: 1, row: hitRow}}
	g.combo = 3
	g.mu.Unlock()

	g.step()
	s := g.snapshot()
	if s.misses != 1 || s.combo != 0 {
		t.Fatalf("misses=%d combo=%d", s.misses, s.combo)
	}
}

func TestRoundEndsAfterConfiguredLength(t *testing.T) {
	g, region := mounted(t, Options{Round: 3 * time.Hour, Tick: time.Hour, Seed: 7})
	for i := 0; i < 3; i++ {
		g.step()
	}
	if !g.snapshot().over {
		t.Fatalf("round should be over after 3 ticks")
	}
	if g.step() {
		t.Fatalf("a finished round must not advance")
	}
	if !strings.Contains(region.Render(80, 24), "Round over") {
		t.Fatalf("end screen missing")
	}

	region.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if s := g.snapshot(); s.over || s.score != 0 || s.remaining != 3*time.Hour {
		t.Fatalf("restart should reset the round: %+v", s)
	}
}

func TestPauseFreezesTheRound(t *testing.T) {
	g, _ := mounted(t, quiet())
	g.Pause()
	if g.step() {
		t.Fatalf("paused round must not advance")
	}
	if g.strike(0) {
		t.Fatalf("paused round ignores strikes")
	}
	g.Resume()
	if !g.step() {
		t.Fatalf("resumed round should advance")
	}
}

func TestTickerInvalidatesContainer(t *testing.T) {
	redraws := make(chan struct{}, 16)
	region := lifecycle.NewRegion(func() {
		select {
		case redraws <- struct{}{}:
		default:
		}
	})
	g := New(Options{Round: time.Minute, Tick: 5 * time.Millisecond, Seed: 1})
	if err := g.Mount(context.Background(), region); err != nil {
		t.Fatalf("mount: %v", err)
	}
	// drain the redraw from Replace
	<-redraws
	select {
	case <-redraws:
	case <-time.After(time.Second):
		t.Fatalf("ticker never asked for a redraw")
	}
	if err := g.Unmount(context.Background()); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if !region.Empty() {
		t.Fatalf("unmount must clear")
	}
}
