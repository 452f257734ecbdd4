package repository

import "time"

// Play is one mount of a game, from Begin until End.
type Play struct {
	ID        string
	ModuleID  string
	StartedAt time.Time
	EndedAt   *time.Time
	Outcome   string
	Error     *string
}

// Duration is how long the play lasted; zero while it is still running.
func (p Play) Duration() time.Duration {
	if p.EndedAt == nil {
		return 0
	}
	return p.EndedAt.Sub(p.StartedAt)
}

// ModuleStats summarises the plays of one game.
type ModuleStats struct {
	ModuleID string
	Plays    int
	Failures int
	LastPlay time.Time
}
