package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type CounterRepository interface {
	// Increment atomically bumps the named counter (creating it at 0 first)
	// and returns the new value.
	Increment(ctx context.Context, name string) (int64, error)
	Get(ctx context.Context, name string) (int64, error)
	// RaiseTo sets the counter to seq unless it is already higher.
	RaiseTo(ctx context.Context, name string, seq int64) (int64, error)
	WithTx(tx *sql.Tx) CounterRepository
}

type counterRepository struct {
	DB DBTX
}

func NewCounterRepository(db *sql.DB) CounterRepository {
	return &counterRepository{DB: db}
}

func (r *counterRepository) WithTx(tx *sql.Tx) CounterRepository {
	return &counterRepository{DB: tx}
}

func (r *counterRepository) Increment(ctx context.Context, name string) (int64, error) {
	const q = `
		INSERT INTO counters (id, seq)
		VALUES ($1, 1)
		ON CONFLICT (id) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`
	var seq int64
	if err := r.DB.QueryRowContext(ctx, q, name).Scan(&seq); err != nil {
		return 0, fmt.Errorf("counter increment %q: %w", name, err)
	}
	return seq, nil
}

// Get returns 0 for a counter that was never incremented.
func (r *counterRepository) Get(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := r.DB.QueryRowContext(ctx, `SELECT seq FROM counters WHERE id = $1`, name).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counter get %q: %w", name, err)
	}
	return seq, nil
}

func (r *counterRepository) RaiseTo(ctx context.Context, name string, seq int64) (int64, error) {
	const q = `
		INSERT INTO counters (id, seq)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET seq = CASE WHEN counters.seq < excluded.seq THEN excluded.seq ELSE counters.seq END
		RETURNING seq
	`
	var out int64
	if err := r.DB.QueryRowContext(ctx, q, name, seq).Scan(&out); err != nil {
		return 0, fmt.Errorf("counter raise %q: %w", name, err)
	}
	return out, nil
}
