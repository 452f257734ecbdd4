package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/bdhub/internal/database"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "bdhub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// clocked returns a PlayRepo whose timestamps advance one minute per call.
func clocked(db *sql.DB) *PlayRepo {
	r := NewPlayRepo(db)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
	return r
}

func TestPlayLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := clocked(openDB(t))

	id, err := repo.Begin(ctx, "note-shooter")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	plays, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	require.Equal(t, OutcomeRunning, plays[0].Outcome)
	require.Nil(t, plays[0].EndedAt)
	require.Zero(t, plays[0].Duration())

	require.NoError(t, repo.End(ctx, id, "finished", nil))
	plays, err = repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, "finished", plays[0].Outcome)
	require.NotNil(t, plays[0].EndedAt)
	require.Equal(t, time.Minute, plays[0].Duration())
	require.Nil(t, plays[0].Error)
}

func TestEndKeepsFirstOutcome(t *testing.T) {
	ctx := context.Background()
	repo := clocked(openDB(t))
	id, err := repo.Begin(ctx, "puzzle-pico")
	require.NoError(t, err)

	require.NoError(t, repo.End(ctx, id, "failed", errors.New("assets missing")))
	require.NoError(t, repo.End(ctx, id, "finished", nil))

	plays, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "failed", plays[0].Outcome)
	require.NotNil(t, plays[0].Error)
	require.Equal(t, "assets missing", *plays[0].Error)
}

func TestEndUnknownPlay(t *testing.T) {
	repo := clocked(openDB(t))
	err := repo.End(context.Background(), "nope", "finished", nil)
	require.ErrorIs(t, err, ErrPlayNotFound)
}

func TestRecentAndStats(t *testing.T) {
	ctx := context.Background()
	repo := clocked(openDB(t))
	for _, id := range []string{"note-shooter", "puzzle-pico", "note-shooter"} {
		playID, err := repo.Begin(ctx, id)
		require.NoError(t, err)
		outcome := "finished"
		if id == "puzzle-pico" {
			outcome = "failed"
		}
		require.NoError(t, repo.End(ctx, playID, outcome, nil))
	}

	plays, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, plays, 2)
	require.Equal(t, "note-shooter", plays[0].ModuleID)
	require.Equal(t, "puzzle-pico", plays[1].ModuleID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, ModuleStats{
		ModuleID: "note-shooter",
		Plays:    2,
		Failures: 0,
		LastPlay: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}, stats[0])
	require.Equal(t, 1, stats[1].Failures)
}

func TestStateRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepo(openDB(t))

	_, ok, err := repo.LastLocation(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.SaveLocation(ctx, "./shoot"))
	require.NoError(t, repo.SaveLocation(ctx, "./pico"))
	loc, ok, err := repo.LastLocation(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "./pico", loc)
}
