package reactions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for reactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a user's reaction on an article.
func (r *Repository) Get(ctx context.Context, articleID, userID int64) (Reaction, error) {
	var re Reaction
	err := r.pool.QueryRow(ctx,
		`SELECT id, article_id, user_id, value, created_at, updated_at
		 FROM reactions WHERE article_id = $1 AND user_id = $2`,
		articleID, userID,
	).Scan(&re.ID, &re.ArticleID, &re.UserID, &re.Value, &re.CreatedAt, &re.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reaction{}, shared.ErrNotFound
		}
		return Reaction{}, err
	}
	return re, nil
}

// Insert adds a reaction. A concurrent insert for the same pair surfaces
// as shared.ErrConflict for the caller to recover from.
func (r *Repository) Insert(ctx context.Context, re Reaction) (Reaction, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reactions (article_id, user_id, value) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		re.ArticleID, re.UserID, re.Value,
	).Scan(&re.ID, &re.CreatedAt, &re.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Reaction{}, shared.ErrConflict
		}
		return Reaction{}, err
	}
	return re, nil
}

// UpdateValue switches an existing reaction to the other value.
func (r *Repository) UpdateValue(ctx context.Context, id int64, value string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reactions SET value = $2, updated_at = NOW() WHERE id = $1`, id, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a user's reaction from an article.
func (r *Repository) Delete(ctx context.Context, articleID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reactions WHERE article_id = $1 AND user_id = $2`, articleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Counts aggregates reactions for an article.
func (r *Repository) Counts(ctx context.Context, articleID int64) (likes, dislikes int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE value = 'like'), COUNT(*) FILTER (WHERE value = 'dislike')
		 FROM reactions WHERE article_id = $1`, articleID,
	).Scan(&likes, &dislikes)
	return likes, dislikes, err
}

// ListByUser returns all of a user's reactions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Reaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, article_id, user_id, value, created_at, updated_at
		 FROM reactions WHERE user_id = $1 ORDER BY updated_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Reaction
	for rows.Next() {
		var re Reaction
		if err := rows.Scan(&re.ID, &re.ArticleID, &re.UserID, &re.Value, &re.CreatedAt, &re.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, re)
	}
	return result, rows.Err()
}
