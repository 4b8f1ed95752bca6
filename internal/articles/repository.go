package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/shared"
	"github.com/pulse-news/pulse/internal/taxonomy"
)

const articleColumns = `a.id, a.title, a.slug, a.summary, a.content, a.featured_image,
	a.author_id, COALESCE(u.username, ''), a.category_id, COALESCE(c.slug, ''),
	a.state, a.view_count, a.published_at, a.created_at, a.updated_at`

const articleJoins = `FROM articles a
	LEFT JOIN users u ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id`

// ListQuery combines caller filters with the computed visibility scope.
type ListQuery struct {
	Filters ListFilters
	Scope   authz.ArticleScope
	Limit   int
	Offset  int
}

// Repository provides PostgreSQL backed persistence for articles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an article and its tag links in one transaction.
func (r *Repository) Create(ctx context.Context, a Article, tagIDs []int64) (Article, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO articles (title, slug, summary, content, featured_image, author_id, category_id, state, published_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id, created_at, updated_at`,
			a.Title, a.Slug, a.Summary, a.Content, a.FeaturedImage,
			a.AuthorID, a.CategoryID, string(a.State), a.PublishedAt,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return shared.ErrConflict
			}
			return err
		}
		return linkTags(ctx, tx, a.ID, tagIDs)
	})
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// GetBySlug fetches one article with its tags.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Article, error) {
	var a Article
	var state string
	err := r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` `+articleJoins+` WHERE a.slug = $1`, slug,
	).Scan(&a.ID, &a.Title, &a.Slug, &a.Summary, &a.Content, &a.FeaturedImage,
		&a.AuthorID, &a.AuthorName, &a.CategoryID, &a.CategorySlug,
		&state, &a.ViewCount, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Article{}, shared.ErrNotFound
		}
		return Article{}, err
	}
	a.State = authz.ArticleState(state)
	tags, err := r.tagsFor(ctx, []int64{a.ID})
	if err != nil {
		return Article{}, err
	}
	a.Tags = tags[a.ID]
	if a.Tags == nil {
		a.Tags = []taxonomy.Tag{}
	}
	return a, nil
}

// List returns articles matching the query plus the total match count.
// Tag joins may multiply rows, hence the DISTINCT; callers still dedupe
// defensively.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Article, int, error) {
	where, args := buildWhere(q)

	var total int
	countSQL := `SELECT COUNT(DISTINCT a.id) ` + articleJoins + tagJoin(q) + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL := `SELECT DISTINCT ` + articleColumns + ` ` + articleJoins + tagJoin(q) + where +
		fmt.Sprintf(` ORDER BY a.published_at DESC NULLS LAST, a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d`,
			len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Article
	var ids []int64
	for rows.Next() {
		var a Article
		var state string
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.Summary, &a.Content, &a.FeaturedImage,
			&a.AuthorID, &a.AuthorName, &a.CategoryID, &a.CategorySlug,
			&state, &a.ViewCount, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		a.State = authz.ArticleState(state)
		result = append(result, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range result {
		result[i].Tags = tags[result[i].ID]
		if result[i].Tags == nil {
			result[i].Tags = []taxonomy.Tag{}
		}
	}
	return result, total, nil
}

// Update rewrites the mutable article fields and optionally replaces the
// tag set.
func (r *Repository) Update(ctx context.Context, a Article, tagIDs []int64, replaceTags bool) (Article, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE articles SET title = $2, summary = $3, content = $4, featured_image = $5,
			   category_id = $6, updated_at = NOW()
			 WHERE id = $1 RETURNING updated_at`,
			a.ID, a.Title, a.Summary, a.Content, a.FeaturedImage, a.CategoryID,
		).Scan(&a.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if !replaceTags {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, a.ID); err != nil {
			return err
		}
		return linkTags(ctx, tx, a.ID, tagIDs)
	})
	if err != nil {
		return Article{}, err
	}
	return a, nil
}

// SetState transitions the article lifecycle. The first publish stamps
// published_at; later transitions leave it untouched.
func (r *Repository) SetState(ctx context.Context, id int64, state authz.ArticleState) (*time.Time, error) {
	var publishedAt *time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE articles SET state = $2,
		   published_at = CASE WHEN $2 = 'published' AND published_at IS NULL THEN NOW() ELSE published_at END,
		   updated_at = NOW()
		 WHERE id = $1 RETURNING published_at`,
		id, string(state),
	).Scan(&publishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return publishedAt, nil
}

// Delete removes an article. Comments, reactions, bookmarks and tag
// links go with it via the schema.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter.
func (r *Repository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (r *Repository) tagsFor(ctx context.Context, articleIDs []int64) (map[int64][]taxonomy.Tag, error) {
	if len(articleIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT at.article_id, t.id, t.name, t.slug
		 FROM article_tags at JOIN tags t ON t.id = at.tag_id
		 WHERE at.article_id = ANY($1) ORDER BY t.name`, articleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]taxonomy.Tag)
	for rows.Next() {
		var articleID int64
		var t taxonomy.Tag
		if err := rows.Scan(&articleID, &t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out[articleID] = append(out[articleID], t)
	}
	return out, rows.Err()
}

func buildWhere(q ListQuery) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if s := strings.TrimSpace(q.Filters.Search); s != "" {
		add(`(a.title ILIKE '%%' || $%d || '%%' OR a.summary ILIKE '%%' || $%[1]d || '%%' OR a.content ILIKE '%%' || $%[1]d || '%%')`, s)
	}
	if q.Filters.CategorySlug != "" {
		add(`c.slug = $%d`, q.Filters.CategorySlug)
	}
	if len(q.Filters.TagSlugs) > 0 {
		add(`ft.slug = ANY($%d)`, q.Filters.TagSlugs)
	}
	if q.Filters.AuthorID != 0 {
		add(`a.author_id = $%d`, q.Filters.AuthorID)
	}
	if q.Filters.State != "" {
		add(`a.state = $%d`, q.Filters.State)
	}
	if !q.Scope.All {
		if q.Scope.ViewerID != nil {
			add(`(a.state = 'published' OR a.author_id = $%d)`, *q.Scope.ViewerID)
		} else {
			clauses = append(clauses, `a.state = 'published'`)
		}
	}
	if len(clauses) == 0 {
		return ``, args
	}
	return ` WHERE ` + strings.Join(clauses, ` AND `), args
}

func tagJoin(q ListQuery) string {
	if len(q.Filters.TagSlugs) == 0 {
		return ``
	}
	return ` JOIN article_tags fat ON fat.article_id = a.id JOIN tags ft ON ft.id = fat.tag_id`
}

func linkTags(ctx context.Context, tx pgx.Tx, articleID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, tagID,
		); err != nil {
			return err
		}
	}
	return nil
}
