package models

import "time"

// Service request priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Service request statuses. The API only ever writes RequestPending; staff
// move requests forward outside this service.
const (
	RequestPending    = "pending"
	RequestInProgress = "in-progress"
	RequestCompleted  = "completed"
)

type ServiceRequest struct {
	ID          string
	UserID      string
	Service     string
	Description string
	Priority    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequestStats summarises one owner's service requests for the dashboard.
type RequestStats struct {
	TotalRequests     int
	ActiveServices    int
	CompletedServices int
	PendingServices   int
}

// ValidPriority reports whether p is one of the accepted priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
