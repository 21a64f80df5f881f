package scans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

const scanColumns = `id, user_id, url, scan_type, status, results, report_key, created_at, completed_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, scan *models.ScanRecord) (*models.ScanRecord, error) {
	query :=
		`INSERT INTO website_scans (user_id, url, scan_type, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, scan.UserID, scan.URL, scan.ScanType, scan.Status).
		Scan(&scan.ID, &scan.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scan, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ScanRecord, error) {
	query := `SELECT ` + scanColumns + ` FROM website_scans WHERE id = $1`

	s, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.ScanRecord, error) {
	query :=
		`SELECT ` + scanColumns + ` FROM website_scans
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ScanRecord, 0)
	for rows.Next() {
		s, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Claim(ctx context.Context, id string) (*models.ScanRecord, error) {
	query :=
		`UPDATE website_scans SET status = 'scanning'
		 WHERE id = $1 AND status = 'pending'
		 RETURNING ` + scanColumns

	s, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Finish(ctx context.Context, id, status string, results json.RawMessage, completedAt time.Time) error {
	query :=
		`UPDATE website_scans SET status = $2, results = $3, completed_at = $4
		 WHERE id = $1 AND status IN ('pending', 'scanning')`

	res, err := r.db.ExecContext(ctx, query, id, status, string(results), completedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetReportKey(ctx context.Context, id, key string) error {
	query := `UPDATE website_scans SET report_key = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Summary(ctx context.Context, userID string) (*models.ScanSummary, error) {
	query :=
		`SELECT COUNT(*), MAX(created_at) FROM website_scans
		 WHERE user_id = $1`

	var s models.ScanSummary
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.TotalScans, &last); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if last.Valid {
		t := last.Time
		s.LastScanAt = &t
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.ScanRecord, error) {
	s := &models.ScanRecord{}
	var results, reportKey sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&s.ID, &s.UserID, &s.URL, &s.ScanType, &s.Status,
		&results, &reportKey, &s.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if results.Valid {
		s.Results = json.RawMessage(results.String)
	}
	s.ReportKey = reportKey.String
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return s, nil
}
