package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/cryptox"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
)

// sessionTokenBytes is the entropy of an opaque session token.
const sessionTokenBytes = 32

// StoreIssuer is the database session strategy. The client holds a random
// token; the sessions table holds its digest, the owner and the expiry.
// Resolve re-reads the account, so profile changes show up immediately.
type StoreIssuer struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	now         func() time.Time
}

func NewStoreIssuer(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration) *StoreIssuer {
	return &StoreIssuer{db: db, repomanager: m, ttl: ttl, now: time.Now}
}

func (s *StoreIssuer) Issue(ctx context.Context, id Identity) (string, time.Time, error) {
	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}

	expiresAt := s.now().Add(s.ttl)
	repo := s.repomanager.Sessions(s.db)
	if err := repo.Create(ctx, cryptox.TokenDigest(token), id.ID, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *StoreIssuer) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, cryptox.TokenDigest(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, common.ErrTokenExpired
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}

	id := IdentityFromAccount(account)
	return &id, nil
}

func (s *StoreIssuer) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repomanager.Sessions(s.db).Delete(ctx, cryptox.TokenDigest(token))
}
