package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

const postColumns = `id, title, slug, content, excerpt, category, array_to_json(tags)::text, author, author_image, image, published, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// where builds the WHERE clause shared by List and Count. Search matches
// title, excerpt, content and tags case-insensitively; LIKE wildcards in
// the search text are matched literally.
func where(filter models.PostFilter) (string, []any) {
	conds := []string{"published = true"}
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%[1]d OR excerpt ILIKE $%[1]d OR content ILIKE $%[1]d OR array_to_string(tags, ' ') ILIKE $%[1]d)", n))
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *PostgresRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	clause, args := where(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM posts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, clause, len(args)-1, len(args))

	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.PostFilter) (int, error) {
	clause, args := where(filter)
	query := `SELECT COUNT(*) FROM posts ` + clause

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1 AND published = true`

	p, err := scanPost(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Related(ctx context.Context, category, excludeID string, limit int) ([]models.Post, error) {
	query :=
		`SELECT ` + postColumns + ` FROM posts
		 WHERE category = $1 AND published = true AND id <> $2
		 ORDER BY created_at DESC
		 LIMIT $3`

	return r.query(ctx, query, category, excludeID, limit)
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	query :=
		`SELECT category, COUNT(*) FROM posts
		 WHERE published = true
		 GROUP BY category
		 ORDER BY category`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.CategoryCount, 0)
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var tags string

	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Category, &tags,
		&p.Author, &p.AuthorImage, &p.Image, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return p, nil
}
