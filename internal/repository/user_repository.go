package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT uuid, email, password_hash, role
        FROM users WHERE email=$1`

	var user domain.User
	var role string
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.UUID,
		&user.Email,
		&user.PasswordHash,
		&role,
	); err != nil {
		return nil, err
	}
	user.Role = domain.NormalizeRole(role)
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING uuid`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.UUID)
}
