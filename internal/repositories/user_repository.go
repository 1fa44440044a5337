package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"numbersapi/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, uuid, email, full_name, phone, company, password_hash, verified, created_at`

// Create fails with ErrDuplicateKey when the email is taken.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (uuid, email, full_name, phone, company, password_hash, verified, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.UUID,
		user.Email,
		user.FullName,
		user.Phone,
		user.Company,
		user.PasswordHash,
		user.Verified,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return wrapWriteErr("user create", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// getOne returns nil, nil when nothing matches.
func (r *userRepository) getOne(ctx context.Context, q string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.UUID, &u.Email, &u.FullName, &u.Phone, &u.Company,
		&u.PasswordHash, &u.Verified, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user get: %w", err)
	}
	return u, nil
}
