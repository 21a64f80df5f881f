package verificationcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

// Repository stores one-time email codes. LockEmail only makes sense inside
// a transaction: the lock is released on commit or rollback.
type Repository interface {
	LockEmail(ctx context.Context, email string) error
	LatestCreatedAt(ctx context.Context, email string) (time.Time, error)
	DeleteByEmail(ctx context.Context, email string) error
	Create(ctx context.Context, code *models.VerificationCode) (*models.VerificationCode, error)
	// Consume atomically marks the matching unused, unexpired code as used
	// and returns it. No match yields common.ErrorNotFound.
	Consume(ctx context.Context, email, code string, now time.Time) (*models.VerificationCode, error)
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}
