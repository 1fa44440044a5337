package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"numbersapi/internal/models"
)

type VerificationCodeRepository interface {
	Create(ctx context.Context, v *models.VerificationCode) error
	LatestUnused(ctx context.Context, email string, purpose models.Purpose) (*models.VerificationCode, error)
	// MarkUsed flips used only if it is still false; false means another
	// caller consumed the code first.
	MarkUsed(ctx context.Context, id int64) (bool, error)
	DeletePending(ctx context.Context, email string, purpose models.Purpose) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type verificationCodeRepository struct {
	DB *sql.DB
}

func NewVerificationCodeRepository(db *sql.DB) VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

// Create: каждая отправка - новая строка.
func (r *verificationCodeRepository) Create(ctx context.Context, v *models.VerificationCode) error {
	const q = `
		INSERT INTO verification_codes (email, code, purpose, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, q, v.Email, v.Code, string(v.Purpose), v.ExpiresAt, v.CreatedAt).Scan(&v.ID); err != nil {
		return wrapWriteErr("verification code create", err)
	}
	v.Used = false
	return nil
}

func (r *verificationCodeRepository) LatestUnused(ctx context.Context, email string, purpose models.Purpose) (*models.VerificationCode, error) {
	const q = `
		SELECT id, email, code, purpose, expires_at, used, created_at
		FROM verification_codes
		WHERE email = $1 AND purpose = $2 AND used = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var (
		v       models.VerificationCode
		purpStr string
	)
	err := r.DB.QueryRowContext(ctx, q, email, string(purpose)).Scan(
		&v.ID, &v.Email, &v.Code, &purpStr, &v.ExpiresAt, &v.Used, &v.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verification code latest: %w", err)
	}
	v.Purpose = models.Purpose(purpStr)
	return &v, nil
}

func (r *verificationCodeRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE verification_codes SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("verification code mark used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("verification code mark used: %w", err)
	}
	return n == 1, nil
}

func (r *verificationCodeRepository) DeletePending(ctx context.Context, email string, purpose models.Purpose) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE email = $1 AND purpose = $2 AND used = FALSE`,
		email, string(purpose),
	)
	if err != nil {
		return 0, fmt.Errorf("verification code delete pending: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("verification code delete expired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
