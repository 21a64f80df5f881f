package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
)

// DashboardStats is what the client dashboard shows.
type DashboardStats struct {
	models.RequestStats
	models.ScanSummary
}

// ServiceRequestService records engagement requests for signed-in clients.
type ServiceRequestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewServiceRequestService(db *sql.DB, m repomanager.RepositoryManager) *ServiceRequestService {
	return &ServiceRequestService{db: db, repomanager: m}
}

// Create stores a pending request. An empty priority means medium.
func (s *ServiceRequestService) Create(ctx context.Context, ownerID, service, description, priority string) (*models.ServiceRequest, error) {
	service = strings.TrimSpace(service)
	description = strings.TrimSpace(description)
	if service == "" || description == "" {
		return nil, fmt.Errorf("%w: service and description are required", common.ErrInvalidInput)
	}
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: priority must be low, medium or high", common.ErrInvalidInput)
	}

	return s.repomanager.ServiceRequests(s.db).Create(ctx, &models.ServiceRequest{
		UserID:      ownerID,
		Service:     service,
		Description: description,
		Priority:    priority,
		Status:      models.RequestPending,
	})
}

// List returns the owner's requests, newest first.
func (s *ServiceRequestService) List(ctx context.Context, ownerID string) ([]models.ServiceRequest, error) {
	return s.repomanager.ServiceRequests(s.db).ListByUser(ctx, ownerID)
}

// Stats counts the owner's requests per status.
func (s *ServiceRequestService) Stats(ctx context.Context, ownerID string) (*models.RequestStats, error) {
	counts, err := s.repomanager.ServiceRequests(s.db).CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &models.RequestStats{
		ActiveServices:    counts[models.RequestInProgress],
		CompletedServices: counts[models.RequestCompleted],
		PendingServices:   counts[models.RequestPending],
	}
	for _, n := range counts {
		stats.TotalRequests += n
	}
	return stats, nil
}

// Dashboard combines the request counters with the owner's scan summary.
func (s *ServiceRequestService) Dashboard(ctx context.Context, ownerID string) (*DashboardStats, error) {
	stats, err := s.Stats(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	summary, err := s.repomanager.Scans(s.db).Summary(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{RequestStats: *stats, ScanSummary: *summary}, nil
}
