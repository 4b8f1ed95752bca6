package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/shared"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, bio, phone,
	role, is_staff, is_superuser, is_active, is_verified, email_notifications,
	COALESCE(last_login_ip, ''), last_login_at, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, bio, phone,
		   role, is_staff, is_superuser, is_active, is_verified, email_notifications)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Bio, user.Phone, user.Role, user.Staff, user.Superuser,
		user.Active, user.Verified, user.EmailNotifications,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, shared.ErrConflict
		}
		return User{}, err
	}
	return user, nil
}

// GetByID fetches an account by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin fetches an account matching the given username or email.
func (r *Repository) FindByLogin(ctx context.Context, login string) (User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login)
}

// UpdateProfile persists mutable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, user User) (User, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, bio = $4, phone = $5,
		   email_notifications = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		user.ID, user.FirstName, user.LastName, user.Bio, user.Phone, user.EmailNotifications,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetRole assigns or clears the account role.
func (r *Repository) SetRole(ctx context.Context, id int64, role *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkLogin stamps the last successful login.
func (r *Repository) MarkLogin(ctx context.Context, id int64, ip string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_ip = NULLIF($2, ''), last_login_at = $3 WHERE id = $1`,
		id, ip, at)
	return err
}

// Deactivate disables an account without deleting its rows.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns accounts ordered by creation time with the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *Repository) one(ctx context.Context, query string, args ...any) (User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return User{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return User{}, err
		}
		return User{}, shared.ErrNotFound
	}
	return scanUser(rows)
}

func scanUser(rows pgx.Rows) (User, error) {
	var user User
	err := rows.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Bio, &user.Phone,
		&user.Role, &user.Staff, &user.Superuser, &user.Active,
		&user.Verified, &user.EmailNotifications,
		&user.LastLoginIP, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}
