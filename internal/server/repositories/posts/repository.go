package posts

import (
	"context"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

// Repository reads published blog posts. Unpublished posts are invisible to
// every method.
type Repository interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	Count(ctx context.Context, filter models.PostFilter) (int, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	Related(ctx context.Context, category, excludeID string, limit int) ([]models.Post, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
}
