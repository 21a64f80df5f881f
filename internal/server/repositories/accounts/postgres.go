package accounts

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

const accountColumns = `id, email, name, company, phone, password, role, email_verified, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO users (email, name, company, phone, password, role, email_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.Email, account.Name, account.Company, account.Phone,
		nullString(account.PasswordHash), account.Role, nullTime(account.EmailVerified))

	created, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) UpsertVerified(ctx context.Context, account *models.Account, verifiedAt time.Time) (*models.Account, error) {
	query :=
		`INSERT INTO users (email, name, company, phone, password, role, email_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (email) DO UPDATE
		 SET email_verified = COALESCE(users.email_verified, EXCLUDED.email_verified)
		 RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		account.Email, account.Name, account.Company, account.Phone,
		nullString(account.PasswordHash), account.Role, verifiedAt)

	a, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	var password sql.NullString
	var verified sql.NullTime

	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Company, &a.Phone,
		&password, &a.Role, &verified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.PasswordHash = password.String
	if verified.Valid {
		t := verified.Time
		a.EmailVerified = &t
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
