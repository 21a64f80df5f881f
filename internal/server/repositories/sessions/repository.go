package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token, userID string, expiresAt time.Time) error
	Find(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
