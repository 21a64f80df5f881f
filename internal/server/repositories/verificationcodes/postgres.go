package verificationcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LockEmail takes a transaction-scoped advisory lock keyed on the address,
// serialising concurrent issuance for the same email.
func (r *PostgresRepository) LockEmail(ctx context.Context, email string) error {
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LatestCreatedAt(ctx context.Context, email string) (time.Time, error) {
	query :=
		`SELECT created_at FROM verification_codes
		 WHERE email = $1
		 ORDER BY created_at DESC
		 LIMIT 1`

	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query, email).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return createdAt, nil
}

func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM verification_codes WHERE email = $1`

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, code *models.VerificationCode) (*models.VerificationCode, error) {
	query :=
		`INSERT INTO verification_codes (email, code, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, used`

	// created_at is set from the caller's clock, matching LatestCreatedAt comparisons.
	err := r.db.QueryRowContext(ctx, query, code.Email, code.Code, code.ExpiresAt, code.CreatedAt).
		Scan(&code.ID, &code.Used)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return code, nil
}

func (r *PostgresRepository) Consume(ctx context.Context, email, code string, now time.Time) (*models.VerificationCode, error) {
	query :=
		`UPDATE verification_codes SET used = true
		 WHERE email = $1 AND code = $2 AND used = false AND expires_at > $3
		 RETURNING id, email, code, expires_at, used, created_at`

	c := &models.VerificationCode{}
	err := r.db.QueryRowContext(ctx, query, email, code, now).
		Scan(&c.ID, &c.Email, &c.Code, &c.ExpiresAt, &c.Used, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// DeleteStale removes codes that can never be redeemed again.
func (r *PostgresRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM verification_codes WHERE used = true OR expires_at <= $1`

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
