package pg

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prepmood/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

// itoa atajo local para armar placeholders dinámicos.
func itoa(n int) string { return strconv.Itoa(n) }

const userCols = `id, email, password_hash, first_name, last_name, is_admin, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepo) Create(ctx context.Context, input repository.CreateUserInput) (*repository.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, is_admin)
		VALUES (lower($1), $2, $3, $4, $5)
		RETURNING ` + userCols
	u, err := scanUser(r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Email), input.PasswordHash,
		input.FirstName, input.LastName, input.IsAdmin))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}
