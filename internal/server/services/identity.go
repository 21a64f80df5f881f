package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/cryptox"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
)

// LoginMethod tells the sign-in form what to ask for next.
type LoginMethod int

const (
	LoginUnknown LoginMethod = iota
	LoginPasswordRequired
	LoginCodeOnly
)

// IdentityService looks up and creates portal accounts.
type IdentityService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	requireVerifiedEmail bool
	now                  func() time.Time
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                   db,
		repomanager:          m,
		requireVerifiedEmail: cfg.RequireVerifiedEmail,
		now:                  time.Now,
	}
}

// CheckUser reports how the address can sign in. It never writes.
func (s *IdentityService) CheckUser(ctx context.Context, email string) (LoginMethod, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return LoginUnknown, fmt.Errorf("%w: a valid email is required", common.ErrInvalidInput)
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return LoginUnknown, nil
		}
		return LoginUnknown, err
	}
	if account.HasPassword() {
		return LoginPasswordRequired, nil
	}
	return LoginCodeOnly, nil
}

// Register creates a password account with the given role. An existing
// address yields common.ErrConflict and is left untouched.
func (s *IdentityService) Register(ctx context.Context, name, email, password, company, phone, role string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || !validEmail(email) || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrInvalidInput)
	}
	if role == "" {
		role = common.RoleClient
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		Email:        email,
		Name:         name,
		Company:      strings.TrimSpace(company),
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		Role:         role,
	})
}

// Login checks a password. Unknown addresses, wrong passwords and code-only
// accounts are indistinguishable to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrInvalidInput)
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !account.HasPassword() {
		return nil, common.ErrorUnauthorized
	}

	ok, err := cryptox.CheckPassword(account.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	if s.requireVerifiedEmail && account.EmailVerified == nil {
		return nil, common.ErrEmailNotVerified
	}
	return account, nil
}

// SignInExternal trusts an address confirmed by an OAuth provider. The
// account is created without a password when missing and marked verified.
func (s *IdentityService) SignInExternal(ctx context.Context, email, name string) (*models.Account, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: provider returned no usable email", common.ErrInvalidInput)
	}

	return s.repomanager.Accounts(s.db).UpsertVerified(ctx, &models.Account{
		Email: email,
		Name:  strings.TrimSpace(name),
		Role:  common.RoleClient,
	}, s.now())
}

// GetAccount loads an account by id.
func (s *IdentityService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, id)
}
