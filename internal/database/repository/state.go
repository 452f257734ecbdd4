package repository

import (
	"context"
	"database/sql"
	"errors"
)

const keyLastLocation = "last_location"

// StateRepo stores small pieces of hub state that outlive a session.
type StateRepo struct {
	db *sql.DB
}

func NewStateRepo(db *sql.DB) *StateRepo {
	return &StateRepo{db: db}
}

func (r *StateRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM hub_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *StateRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO hub_state(key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
	 value=excluded.value,
	 updated_at=CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

// LastLocation returns the location saved by SaveLocation, if any.
func (r *StateRepo) LastLocation(ctx context.Context) (string, bool, error) {
	return r.Get(ctx, keyLastLocation)
}

func (r *StateRepo) SaveLocation(ctx context.Context, location string) error {
	return r.Set(ctx, keyLastLocation, location)
}
