package inquiries

import (
	"context"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error)
}
