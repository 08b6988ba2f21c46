package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-portal/internal/model"
)

const userColumns = `id, email, name, emp_id, role, department, password_hash,
	        mfa_enabled, mfa_secret, is_active, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.EmpID, &u.Role, &u.Department,
		&u.PasswordHash, &u.MFAEnabled, &u.MFASecret, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, storageErr("find user by id", err)
	}
	return u, nil
}

// FindByEmail matches case-insensitively on the trimmed identifier.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, storageErr("find user by email", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, emp_id, role, department, password_hash,
		                    mfa_enabled, mfa_secret, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Email, u.Name, u.EmpID, u.Role, u.Department, u.PasswordHash,
		u.MFAEnabled, u.MFASecret, u.IsActive, u.CreatedAt, u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return storageErr("create user", err)
	}
	return nil
}

// Update changes role and active flag. Users are never deleted, only
// deactivated here.
func (r *UserRepository) Update(ctx context.Context, id string, role string, isActive bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, is_active = $3, updated_at = $4 WHERE id = $1`,
		id, role, isActive, time.Now().UTC())
	if err != nil {
		return storageErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetMFA(ctx context.Context, id string, enabled bool, secret string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET mfa_enabled = $2, mfa_secret = $3, updated_at = $4 WHERE id = $1`,
		id, enabled, secret, time.Now().UTC())
	if err != nil {
		return storageErr("set user mfa", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY emp_id`)
	if err != nil {
		return nil, storageErr("list users", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageErr("scan user", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, storageErr("count users", err)
	}
	return count, nil
}
