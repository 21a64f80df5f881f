// Package services contains the portal's business logic. Services hold the
// connection pool and a RepositoryManager and open transactions with
// dbx.WithTx where an operation spans several statements.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/cryptox"
	"github.com/dmitrijs2005/eastsecure/internal/dbx"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/notify"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
)

// Profile carries the optional fields used when redeeming a code creates a
// new account. They are ignored for existing accounts.
type Profile struct {
	Name     string
	Company  string
	Phone    string
	Password string
}

// VerificationService issues and redeems one-time email codes.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	codeLength  int
	codeTTL     time.Duration
	cooldown    time.Duration
	now         func() time.Time
	newCode     func(length int) (string, error)
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, n notify.Notifier, cfg *config.Config) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		notifier:    n,
		codeLength:  cfg.VerificationCodeLength,
		codeTTL:     cfg.VerificationCodeTTL,
		cooldown:    cfg.VerificationCodeCooldown,
		now:         time.Now,
		newCode:     common.GenerateNumericCode,
	}
}

// RequestCode replaces any outstanding code for email with a fresh one and
// mails it. It returns the normalized address.
//
// The replacement runs under a per-email advisory lock, so concurrent
// requests for one address leave exactly one active code. A delivery
// failure is reported as common.ErrDeliveryFailed; the stored code remains
// valid.
func (s *VerificationService) RequestCode(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return "", fmt.Errorf("%w: a valid email is required", common.ErrInvalidInput)
	}

	code, err := s.newCode(s.codeLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	now := s.now()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.VerificationCodes(tx)

		if err := repo.LockEmail(ctx, email); err != nil {
			return err
		}

		if s.cooldown > 0 {
			last, err := repo.LatestCreatedAt(ctx, email)
			switch {
			case err == nil:
				if now.Sub(last) < s.cooldown {
					return common.ErrRateLimited
				}
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}

		if err := repo.DeleteByEmail(ctx, email); err != nil {
			return err
		}

		_, err := repo.Create(ctx, &models.VerificationCode{
			Email:     email,
			Code:      code,
			ExpiresAt: now.Add(s.codeTTL),
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	if err := s.notifier.SendVerificationCode(ctx, email, code, s.codeTTL); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}
	return email, nil
}

// RedeemCode consumes a code and returns the account it verifies, creating
// the account from profile when the address is new. Wrong, expired, used and
// never-issued codes all yield common.ErrInvalidOrExpiredCode.
func (s *VerificationService) RedeemCode(ctx context.Context, email, code string, profile Profile) (*models.Account, error) {
	email = normalizeEmail(email)
	if !validEmail(email) || code == "" {
		return nil, fmt.Errorf("%w: email and code are required", common.ErrInvalidInput)
	}

	// Hashed outside the transaction. An existing account keeps its hash and
	// this one is discarded.
	var passwordHash string
	if profile.Password != "" {
		h, err := cryptox.HashPassword(profile.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = h
	}

	now := s.now()
	var account *models.Account

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.VerificationCodes(tx).Consume(ctx, email, code, now); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOrExpiredCode
			}
			return err
		}

		var err error
		account, err = s.repomanager.Accounts(tx).UpsertVerified(ctx, &models.Account{
			Email:        email,
			Name:         profile.Name,
			Company:      profile.Company,
			Phone:        profile.Phone,
			PasswordHash: passwordHash,
			Role:         common.RoleClient,
		}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
