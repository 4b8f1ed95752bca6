package bookmarks

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for bookmarks.
// Every query filters on user_id; there is no path that reads another
// user's bookmarks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert adds a bookmark. A duplicate pair surfaces as shared.ErrConflict.
func (r *Repository) Insert(ctx context.Context, articleID, userID int64) (Bookmark, error) {
	b := Bookmark{ArticleID: articleID, UserID: userID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO bookmarks (article_id, user_id) VALUES ($1, $2) RETURNING id, created_at`,
		articleID, userID,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Bookmark{}, shared.ErrConflict
		}
		return Bookmark{}, err
	}
	return b, nil
}

// Delete removes a user's bookmark on an article.
func (r *Repository) Delete(ctx context.Context, articleID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE article_id = $1 AND user_id = $2`, articleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Exists reports whether the user bookmarked the article.
func (r *Repository) Exists(ctx context.Context, articleID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookmarks WHERE article_id = $1 AND user_id = $2)`,
		articleID, userID,
	).Scan(&exists)
	return exists, err
}

// ListByUser returns the user's bookmarks, newest first, with article
// headlines joined in.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Bookmark, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.article_id, a.slug, a.title, b.user_id, b.created_at
		 FROM bookmarks b JOIN articles a ON a.id = b.article_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC, b.id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.ArticleID, &b.ArticleSlug, &b.ArticleTitle, &b.UserID, &b.CreatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
