package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. An existing row with the same email is
	// left untouched and common.ErrConflict is returned.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// UpsertVerified creates the account with email_verified = verifiedAt, or,
	// when the email already exists, only fills in a missing email_verified.
	UpsertVerified(ctx context.Context, account *models.Account, verifiedAt time.Time) (*models.Account, error)
}
