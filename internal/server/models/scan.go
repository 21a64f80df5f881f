package models

import (
	"encoding/json"
	"time"
)

// Scan statuses. Transitions: pending → scanning → completed | failed,
// or pending → failed when the job could not be queued.
const (
	ScanPending   = "pending"
	ScanScanning  = "scanning"
	ScanCompleted = "completed"
	ScanFailed    = "failed"
)

// DefaultScanType is used when the caller does not name one.
const DefaultScanType = "basic"

// ScanRecord tracks one delegation to the external scanner. Results is the
// scanner's JSON verbatim (or an {"error": ...} descriptor) and is nil while
// the scan is in flight. CompletedAt is set iff the status is terminal.
type ScanRecord struct {
	ID          string
	UserID      string
	URL         string
	ScanType    string
	Status      string
	Results     json.RawMessage
	ReportKey   string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Terminal reports whether the scan has finished one way or the other.
func (s *ScanRecord) Terminal() bool {
	return s.Status == ScanCompleted || s.Status == ScanFailed
}

// ScanSummary feeds the dashboard scan counters.
type ScanSummary struct {
	TotalScans int
	LastScanAt *time.Time
}
