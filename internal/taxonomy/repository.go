package taxonomy

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for categories and tags.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCategories returns all categories with their published article counts.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.slug, c.description,
		   (SELECT COUNT(*) FROM articles a WHERE a.category_id = c.id AND a.state = 'published'),
		   c.created_at, c.updated_at
		 FROM categories c ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ArticleCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetCategoryBySlug fetches one category.
func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`SELECT c.id, c.name, c.slug, c.description,
		   (SELECT COUNT(*) FROM articles a WHERE a.category_id = c.id AND a.state = 'published'),
		   c.created_at, c.updated_at
		 FROM categories c WHERE c.slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ArticleCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Slug, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, shared.ErrConflict
		}
		return Category{}, err
	}
	return c, nil
}

// UpdateCategory persists name and description changes. The slug follows
// the name so links stay readable.
func (r *Repository) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE categories SET name = $2, slug = $3, description = $4, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		c.ID, c.Name, c.Slug, c.Description,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return Category{}, shared.ErrConflict
		}
		return Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category. Articles keep existing with their
// category reference cleared by the schema.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListTags returns all tags ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetTagBySlug fetches one tag.
func (r *Repository) GetTagBySlug(ctx context.Context, slug string) (Tag, error) {
	var t Tag
	err := r.pool.QueryRow(ctx, `SELECT id, name, slug FROM tags WHERE slug = $1`, slug).
		Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tag{}, shared.ErrNotFound
		}
		return Tag{}, err
	}
	return t, nil
}

// EnsureTags resolves tag names to records, creating missing ones.
// Called from article writes, where authors may coin new tags freely.
func (r *Repository) EnsureTags(ctx context.Context, names []string, slugs []string) ([]Tag, error) {
	result := make([]Tag, 0, len(names))
	for i, name := range names {
		var t Tag
		err := r.pool.QueryRow(ctx,
			`INSERT INTO tags (name, slug) VALUES ($1, $2)
			 ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			 RETURNING id, name, slug`,
			name, slugs[i],
		).Scan(&t.ID, &t.Name, &t.Slug)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// UpdateTag renames a tag.
func (r *Repository) UpdateTag(ctx context.Context, t Tag) (Tag, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tags SET name = $2, slug = $3 WHERE id = $1`, t.ID, t.Name, t.Slug)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Tag{}, shared.ErrConflict
		}
		return Tag{}, err
	}
	if tag.RowsAffected() == 0 {
		return Tag{}, shared.ErrNotFound
	}
	return t, nil
}

// DeleteTag removes a tag and its article links.
func (r *Repository) DeleteTag(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
