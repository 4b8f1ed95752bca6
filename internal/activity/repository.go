package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for activity records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one activity record.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	var details []byte
	if len(rec.Details) > 0 {
		data, err := json.Marshal(rec.Details)
		if err != nil {
			return err
		}
		details = data
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_activities (user_id, action, ip_address, user_agent, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		rec.UserID, rec.Action, nullString(rec.IPAddress), nullString(rec.UserAgent), details, nullTime(rec.CreatedAt),
	)
	return err
}

// List returns activity records newest first with the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Record, int, error) {
	where := `WHERE ($1::bigint = 0 OR user_id = $1) AND ($2::text = '' OR action = $2)`
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_activities `+where, filters.UserID, filters.Action).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, COALESCE(ip_address, ''), COALESCE(user_agent, ''), details, created_at
		 FROM user_activities `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		filters.UserID, filters.Action, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Record
	for rows.Next() {
		var rec Record
		var details []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.IPAddress, &rec.UserAgent, &details, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &rec.Details); err != nil {
				return nil, 0, err
			}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
