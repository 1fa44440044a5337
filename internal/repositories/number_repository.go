package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"numbersapi/internal/models"
)

type NumberRepository interface {
	Create(ctx context.Context, rec *models.NumberRecord) error
	// NthLatest returns the record at position n (0 = newest) or nil.
	NthLatest(ctx context.Context, n int) (*models.NumberRecord, error)
	List(ctx context.Context) ([]*models.NumberRecord, error)

	// backfill helpers
	MaxSerial(ctx context.Context) (int64, error)
	ListUnserialized(ctx context.Context) ([]*models.NumberRecord, error)
	SetSerial(ctx context.Context, id, serial int64) error
	WithTx(tx *sql.Tx) NumberRepository
}

type numberRepository struct {
	DB DBTX
}

func NewNumberRepository(db *sql.DB) NumberRepository {
	return &numberRepository{DB: db}
}

func (r *numberRepository) WithTx(tx *sql.Tx) NumberRepository {
	return &numberRepository{DB: tx}
}

// Newest first; equal timestamps fall back to serial, then id.
const numberOrder = `ORDER BY saved_at DESC, serial DESC, id DESC`

func (r *numberRepository) Create(ctx context.Context, rec *models.NumberRecord) error {
	const q = `
		INSERT INTO numbers (value, saved_at, serial)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, q, rec.Value, rec.SavedAt, rec.Serial).Scan(&rec.ID); err != nil {
		return wrapWriteErr("number create", err)
	}
	return nil
}

func (r *numberRepository) NthLatest(ctx context.Context, n int) (*models.NumberRecord, error) {
	q := `SELECT id, value, saved_at, serial FROM numbers ` + numberOrder + ` LIMIT 1 OFFSET $1`
	rec, err := scanNumber(r.DB.QueryRowContext(ctx, q, n))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("number nth latest %d: %w", n, err)
	}
	return rec, nil
}

func (r *numberRepository) List(ctx context.Context) ([]*models.NumberRecord, error) {
	q := `SELECT id, value, saved_at, serial FROM numbers ` + numberOrder
	return r.query(ctx, "number list", q)
}

func (r *numberRepository) MaxSerial(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, `SELECT MAX(serial) FROM numbers`).Scan(&max); err != nil {
		return 0, fmt.Errorf("number max serial: %w", err)
	}
	return max.Int64, nil
}

// ListUnserialized returns legacy rows without a serial, oldest first.
func (r *numberRepository) ListUnserialized(ctx context.Context) ([]*models.NumberRecord, error) {
	const q = `
		SELECT id, value, saved_at, serial
		FROM numbers
		WHERE serial IS NULL OR serial <= 0
		ORDER BY saved_at ASC, id ASC
	`
	return r.query(ctx, "number list unserialized", q)
}

func (r *numberRepository) SetSerial(ctx context.Context, id, serial int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE numbers SET serial = $1 WHERE id = $2`, serial, id)
	if err != nil {
		return wrapWriteErr("number set serial", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("number set serial: id %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (r *numberRepository) query(ctx context.Context, op, q string, args ...any) ([]*models.NumberRecord, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []*models.NumberRecord{}
	for rows.Next() {
		rec, err := scanNumber(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNumber(row rowScanner) (*models.NumberRecord, error) {
	var (
		rec    models.NumberRecord
		serial sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.Value, &rec.SavedAt, &serial); err != nil {
		return nil, err
	}
	rec.Serial = serial.Int64
	return &rec, nil
}
