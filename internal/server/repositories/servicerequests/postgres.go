package servicerequests

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, request *models.ServiceRequest) (*models.ServiceRequest, error) {
	query :=
		`INSERT INTO service_requests (user_id, service, description, priority, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		request.UserID, request.Service, request.Description, request.Priority, request.Status).
		Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return request, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.ServiceRequest, error) {
	query :=
		`SELECT id, user_id, service, description, priority, status, created_at, updated_at
		 FROM service_requests
		 WHERE user_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ServiceRequest, 0)
	for rows.Next() {
		var sr models.ServiceRequest
		if err := rows.Scan(&sr.ID, &sr.UserID, &sr.Service, &sr.Description,
			&sr.Priority, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, userID string) (map[string]int, error) {
	query :=
		`SELECT status, COUNT(*) FROM service_requests
		 WHERE user_id = $1
		 GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}
