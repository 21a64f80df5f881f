package servicerequests

import (
	"context"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, request *models.ServiceRequest) (*models.ServiceRequest, error)
	// ListByUser returns the owner's requests, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.ServiceRequest, error)
	// CountByStatus returns request counts keyed by status. Statuses with no
	// requests are absent.
	CountByStatus(ctx context.Context, userID string) (map[string]int, error)
}
