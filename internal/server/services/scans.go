package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/jobs"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eastsecure/internal/server/scanner"
	"github.com/dmitrijs2005/eastsecure/internal/server/storage"
	"github.com/google/uuid"
)

// Enqueuer accepts scan jobs for background execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, job jobs.ScanJob) error
}

// ReportArchive copies finished reports to object storage.
type ReportArchive interface {
	Put(ctx context.Context, key string, body []byte) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// ScanService records scan requests and delegates them to the external
// scanner through the job queue. Each record is executed at most once.
type ScanService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	scanner     scanner.Scanner
	queue       Enqueuer
	archive     ReportArchive
	logger      logging.Logger
	now         func() time.Time
}

// NewScanService wires the orchestrator. archive may be nil, in which case
// reports are only kept in the database.
func NewScanService(db *sql.DB, m repomanager.RepositoryManager, sc scanner.Scanner, q Enqueuer, archive ReportArchive, l logging.Logger) *ScanService {
	return &ScanService{
		db:          db,
		repomanager: m,
		scanner:     sc,
		queue:       q,
		archive:     archive,
		logger:      l,
		now:         time.Now,
	}
}

// CreateScan stores a pending scan and queues it. It returns without
// waiting for the scanner. When the job cannot be queued the record is
// failed immediately, but the returned record still reads pending.
func (s *ScanService) CreateScan(ctx context.Context, ownerID, rawURL, scanType string) (*models.ScanRecord, error) {
	if !validTargetURL(rawURL) {
		return nil, fmt.Errorf("%w: a valid http or https URL is required", common.ErrInvalidInput)
	}
	if scanType = strings.TrimSpace(scanType); scanType == "" {
		scanType = models.DefaultScanType
	}

	repo := s.repomanager.Scans(s.db)
	scan, err := repo.Create(ctx, &models.ScanRecord{
		UserID:   ownerID,
		URL:      strings.TrimSpace(rawURL),
		ScanType: scanType,
		Status:   models.ScanPending,
	})
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, jobs.ScanJob{ScanID: scan.ID}); err != nil {
		s.logger.Error(ctx, "could not queue scan", "scan_id", scan.ID, "error", err)
		results := errorDescriptor(fmt.Errorf("could not queue scan: %w", err))
		if ferr := repo.Finish(context.WithoutCancel(ctx), scan.ID, models.ScanFailed, results, s.now()); ferr != nil {
			s.logger.Error(ctx, "could not fail unqueued scan", "scan_id", scan.ID, "error", ferr)
		}
	}
	return scan, nil
}

// Execute is the worker side of a scan. A record that is no longer pending
// has been claimed already and is skipped. Scanner failures are stored on
// the record; only storage errors are returned.
func (s *ScanService) Execute(ctx context.Context, scanID string) error {
	repo := s.repomanager.Scans(s.db)

	scan, err := repo.Claim(ctx, scanID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "scan already claimed, skipping", "scan_id", scanID)
			return nil
		}
		return err
	}

	status := models.ScanCompleted
	results, err := s.scanner.Scan(ctx, scan.URL, scan.ScanType)
	if err != nil {
		s.logger.Warn(ctx, "scan failed", "scan_id", scanID, "url", scan.URL, "error", err)
		status = models.ScanFailed
		results = errorDescriptor(err)
	}

	if err := repo.Finish(ctx, scanID, status, results, s.now()); err != nil {
		if status == models.ScanCompleted {
			// Keep the record out of scanning when the report itself cannot be stored.
			if ferr := repo.Finish(ctx, scanID, models.ScanFailed, errorDescriptor(err), s.now()); ferr != nil {
				s.logger.Error(ctx, "mark scan failed", "scan_id", scanID, "error", ferr)
			}
		}
		return fmt.Errorf("finish scan %s: %w", scanID, err)
	}
	s.logger.Info(ctx, "scan finished", "scan_id", scanID, "status", status)

	if status == models.ScanCompleted && s.archive != nil {
		s.archiveReport(ctx, scan, results)
	}
	return nil
}

func (s *ScanService) archiveReport(ctx context.Context, scan *models.ScanRecord, results json.RawMessage) {
	key := storage.ReportKey(scan.UserID, scan.ID)
	if err := s.archive.Put(ctx, key, results); err != nil {
		s.logger.Error(ctx, "could not archive scan report", "scan_id", scan.ID, "error", err)
		return
	}
	if err := s.repomanager.Scans(s.db).SetReportKey(ctx, scan.ID, key); err != nil {
		s.logger.Error(ctx, "could not record report key", "scan_id", scan.ID, "error", err)
	}
}

// GetScan returns one of the owner's scans. Malformed ids and scans owned
// by someone else are reported as common.ErrorNotFound.
func (s *ScanService) GetScan(ctx context.Context, id, ownerID string) (*models.ScanRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	scan, err := s.repomanager.Scans(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scan.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return scan, nil
}

// ListScans returns the owner's scans, newest first.
func (s *ScanService) ListScans(ctx context.Context, ownerID string) ([]models.ScanRecord, error) {
	return s.repomanager.Scans(s.db).ListByUser(ctx, ownerID)
}

// ReportURL returns a short-lived download link for an archived report, or
// "" when the scan has none.
func (s *ScanService) ReportURL(ctx context.Context, scan *models.ScanRecord) (string, error) {
	if s.archive == nil || scan.ReportKey == "" {
		return "", nil
	}
	return s.archive.PresignedURL(ctx, scan.ReportKey)
}

func validTargetURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func errorDescriptor(err error) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return b
}
