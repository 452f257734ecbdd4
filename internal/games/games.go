// Package games lists the mini-games the hub ships with.
package games

import (
	"time"

	"github.com/jask/bdhub/internal/games/klotski"
	"github.com/jask/bdhub/internal/games/noteshooter"
	"github.com/jask/bdhub/internal/games/puzzlepico"
	"github.com/jask/bdhub/internal/hub"
)

type Config struct {
	NoteShooterRound time.Duration
	// Seed fixes the random games for reproducible sessions; zero is random.
	Seed uint64
}

// Catalog returns fresh descriptors in display order. Each call builds new
// module instances.
func Catalog(cfg Config) []hub.Descriptor {
	return []hub.Descriptor{
		{
			ID:          noteshooter.ID,
			Title:       "Note Shooter",
			Description: "Hit the falling notes with F and J and chase a high score before time runs out.",
			Cover:       "♪",
			Tags:        []string{"music", "reaction"},
			Source:      &hub.Attribution{Name: "zfkdiyi/bangdream", URL: "https://github.com/zfkdiyi/bangdream"},
			Module:      noteshooter.New(noteshooter.Options{Round: cfg.NoteShooterRound, Seed: cfg.Seed}),
		},
		{
			ID:          puzzlepico.ID,
			Title:       "Puzzle Pico",
			Description: "Flip cells on the grid until every light is switched off.",
			Cover:       "▦",
			Tags:        []string{"puzzle", "logic"},
			Source:      &hub.Attribution{Name: "hamzaabamboo/pazuru-pico", URL: "https://github.com/hamzaabamboo/pazuru-pico"},
			Module:      puzzlepico.New(cfg.Seed),
		},
		{
			ID:          klotski.ID,
			Title:       "Bang Klotski",
			Description: "Slide the blocks aside and walk the leader out through the bottom exit.",
			Cover:       "▣",
			Tags:        []string{"puzzle", "sliding"},
			Source:      &hub.Attribution{Name: "bang-klotski"},
			Module:      klotski.New(),
		},
	}
}

// Aliases are the default short path segments, keyed by game id.
func Aliases() map[string]string {
	return map[string]string{
		noteshooter.ID: noteshooter.Alias,
		puzzlepico.ID:  puzzlepico.Alias,
		klotski.ID:     klotski.Alias,
	}
}
