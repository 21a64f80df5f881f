package inquiries

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

func (r *PostgresRepository) Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error) {
	query :=
		`INSERT INTO inquiries (name, email, company, phone, service, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		inquiry.Name, inquiry.Email, inquiry.Company, inquiry.Phone,
		inquiry.Service, inquiry.Message, inquiry.Status).
		Scan(&inquiry.ID, &inquiry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return inquiry, nil
}
