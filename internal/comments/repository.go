package comments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/shared"
)

const commentColumns = `c.id, c.article_id, c.author_id, COALESCE(u.username, ''), c.parent_id,
	c.content, c.is_active, c.created_at, c.updated_at`

// Repository provides PostgreSQL backed persistence for comments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByArticle returns the article's comments oldest first.
func (r *Repository) ListByArticle(ctx context.Context, articleID int64, includeInactive bool) ([]Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c LEFT JOIN users u ON u.id = c.author_id
		 WHERE c.article_id = $1 AND (c.is_active OR $2)
		 ORDER BY c.created_at, c.id`,
		articleID, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.AuthorID, &c.AuthorName, &c.ParentID,
			&c.Content, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetByID fetches one comment.
func (r *Repository) GetByID(ctx context.Context, id int64) (Comment, error) {
	var c Comment
	err := r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c LEFT JOIN users u ON u.id = c.author_id
		 WHERE c.id = $1`, id,
	).Scan(&c.ID, &c.ArticleID, &c.AuthorID, &c.AuthorName, &c.ParentID,
		&c.Content, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, shared.ErrNotFound
		}
		return Comment{}, err
	}
	return c, nil
}

// Create inserts a comment.
func (r *Repository) Create(ctx context.Context, c Comment) (Comment, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (article_id, author_id, parent_id, content, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING id, is_active, created_at, updated_at`,
		c.ArticleID, c.AuthorID, c.ParentID, c.Content,
	).Scan(&c.ID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

// UpdateContent rewrites the comment body.
func (r *Repository) UpdateContent(ctx context.Context, id int64, content string) (Comment, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`, id, content)
	if err != nil {
		return Comment{}, err
	}
	if tag.RowsAffected() == 0 {
		return Comment{}, shared.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// SetActive toggles the soft-delete flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE comments SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
