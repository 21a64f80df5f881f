package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
)

const (
	defaultPostLimit = 10
	maxPostLimit     = 50
	relatedPostLimit = 3
	allCategories    = "All"
)

// PostPage is one page of the blog listing.
type PostPage struct {
	Posts   []models.Post
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// BlogService serves published posts to the public site.
type BlogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBlogService(db *sql.DB, m repomanager.RepositoryManager) *BlogService {
	return &BlogService{db: db, repomanager: m}
}

// List returns published posts newest first. Category "All" means any
// category; the limit defaults to 10 and is capped at 50.
func (s *BlogService) List(ctx context.Context, f models.PostFilter) (*PostPage, error) {
	f.Category = strings.TrimSpace(f.Category)
	if strings.EqualFold(f.Category, allCategories) {
		f.Category = ""
	}
	f.Search = strings.TrimSpace(f.Search)
	if f.Limit <= 0 {
		f.Limit = defaultPostLimit
	}
	if f.Limit > maxPostLimit {
		f.Limit = maxPostLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	repo := s.repomanager.Posts(s.db)
	posts, err := repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:   posts,
		Total:   total,
		Limit:   f.Limit,
		Offset:  f.Offset,
		HasMore: f.Offset+f.Limit < total,
	}, nil
}

// GetBySlug returns a post and up to three others from its category.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.Post, []models.Post, error) {
	repo := s.repomanager.Posts(s.db)

	post, err := repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	related, err := repo.Related(ctx, post.Category, post.ID, relatedPostLimit)
	if err != nil {
		return nil, nil, err
	}
	return post, related, nil
}

// Categories lists categories of published posts with their counts.
func (s *BlogService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	return s.repomanager.Posts(s.db).Categories(ctx)
}
