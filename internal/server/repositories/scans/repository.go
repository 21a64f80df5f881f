package scans

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, scan *models.ScanRecord) (*models.ScanRecord, error)
	GetByID(ctx context.Context, id string) (*models.ScanRecord, error)
	// ListByUser returns the owner's scans, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.ScanRecord, error)
	// Claim moves a pending scan to scanning and returns it. A scan that is
	// not pending (already claimed or finished) yields common.ErrorNotFound.
	Claim(ctx context.Context, id string) (*models.ScanRecord, error)
	// Finish records a terminal status. Only non-terminal scans are updated;
	// otherwise common.ErrorNotFound is returned.
	Finish(ctx context.Context, id, status string, results json.RawMessage, completedAt time.Time) error
	SetReportKey(ctx context.Context, id, key string) error
	Summary(ctx context.Context, userID string) (*models.ScanSummary, error)
}
