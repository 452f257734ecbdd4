package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const OutcomeRunning = "running"

var ErrPlayNotFound = errors.New("repository: play not found")

// PlayRepo handles the play log.
type PlayRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewPlayRepo(db *sql.DB) *PlayRepo {
	return &PlayRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Begin records the start of a play and returns its id.
func (r *PlayRepo) Begin(ctx context.Context, moduleID string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO plays(id, module_id, started_at, outcome)
	VALUES (?, ?, ?, ?)
	`, id, moduleID, r.now(), OutcomeRunning)
	if err != nil {
		return "", fmt.Errorf("insert play: %w", err)
	}
	return id, nil
}

// End closes a running play. Ending a play twice keeps the first outcome.
func (r *PlayRepo) End(ctx context.Context, playID, outcome string, cause error) error {
	var msg *string
	if cause != nil {
		s := cause.Error()
		msg = &s
	}
	res, err := r.db.ExecContext(ctx, `
	UPDATE plays SET ended_at = ?, outcome = ?, error = ?
	WHERE id = ? AND ended_at IS NULL
	`, r.now(), outcome, msg, playID)
	if err != nil {
		return fmt.Errorf("end play: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM plays WHERE id = ?`, playID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrPlayNotFound, playID)
		}
		return err
	}
	return nil
}

// Recent returns up to limit plays, newest first.
func (r *PlayRepo) Recent(ctx context.Context, limit int) ([]Play, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, module_id, started_at, ended_at, outcome, error
	FROM plays
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Play
	for rows.Next() {
		var (
			p     Play
			ended sql.NullTime
			msg   sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ModuleID, &p.StartedAt, &ended, &p.Outcome, &msg); err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			p.EndedAt = &t
		}
		if msg.Valid {
			s := msg.String
			p.Error = &s
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stats returns per-game totals ordered by most recently played.
func (r *PlayRepo) Stats(ctx context.Context) ([]ModuleStats, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT module_id, COUNT(*), SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END), MAX(started_at)
	FROM plays
	GROUP BY module_id
	ORDER BY MAX(started_at) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ModuleStats
	for rows.Next() {
		var (
			s    ModuleStats
			last string
		)
		if err := rows.Scan(&s.ModuleID, &s.Plays, &s.Failures, &last); err != nil {
			return nil, err
		}
		s.LastPlay = parseTime(last)
		out = append(out, s)
	}
	return out, rows.Err()
}

// parseTime reads the text sqlite returns for aggregated timestamp columns.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
