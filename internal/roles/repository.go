package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles with their capability grants.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, display_name, description, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		caps, err := r.capabilities(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Capabilities = caps
	}
	return result, nil
}

// GetRoleByName fetches a single role with its capabilities.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, display_name, description, created_at, updated_at FROM roles WHERE name = $1`,
		name,
	).Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	caps, err := r.capabilities(ctx, role.ID)
	if err != nil {
		return Role{}, err
	}
	role.Capabilities = caps
	return role, nil
}

// CreateRole inserts a role and its grants in one transaction.
func (r *Repository) CreateRole(ctx context.Context, role Role) (Role, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO roles (name, display_name, description) VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			role.Name, role.DisplayName, role.Description,
		).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return shared.ErrConflict
			}
			return err
		}
		return insertCapabilities(ctx, tx, role.ID, role.Capabilities)
	})
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// ReplaceCapabilities swaps the grant set of an existing role.
func (r *Repository) ReplaceCapabilities(ctx context.Context, roleID int64, caps []authz.Capability) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_capabilities WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		if err := insertCapabilities(ctx, tx, roleID, caps); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE roles SET updated_at = NOW() WHERE id = $1`, roleID)
		return err
	})
}

// EnsureRole seeds a role idempotently, adding any missing grants without
// removing customizations made since.
func (r *Repository) EnsureRole(ctx context.Context, role Role) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO roles (name, display_name, description) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`,
			role.Name, role.DisplayName, role.Description,
		).Scan(&id)
		if err != nil {
			return err
		}
		return insertCapabilities(ctx, tx, id, role.Capabilities)
	})
}

func (r *Repository) capabilities(ctx context.Context, roleID int64) ([]authz.Capability, error) {
	rows, err := r.pool.Query(ctx, `SELECT capability FROM role_capabilities WHERE role_id = $1 ORDER BY capability`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var caps []authz.Capability
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		caps = append(caps, authz.Capability(c))
	}
	return caps, rows.Err()
}

func insertCapabilities(ctx context.Context, tx pgx.Tx, roleID int64, caps []authz.Capability) error {
	for _, c := range caps {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_capabilities (role_id, capability) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roleID, string(c),
		); err != nil {
			return err
		}
	}
	return nil
}
