package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type checkpointRepository struct {
	storage *Storage
}

func (r *checkpointRepository) Load(ctx context.Context, name string) (time.Time, bool, error) {
	const query = `SELECT checked_at FROM reconcile_checkpoints WHERE name=$1`
	var at time.Time
	if err := r.storage.pool.QueryRow(ctx, query, name).Scan(&at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (r *checkpointRepository) Save(ctx context.Context, name string, at time.Time) error {
	const query = `INSERT INTO reconcile_checkpoints (name, checked_at) VALUES ($1, $2)
                   ON CONFLICT (name) DO UPDATE SET checked_at=EXCLUDED.checked_at`
	_, err := r.storage.pool.Exec(ctx, query, name, at)
	return err
}
