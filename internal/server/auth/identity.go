// Package auth issues and resolves portal session credentials. Two
// strategies implement Issuer: JWTIssuer (stateless signed tokens) and
// StoreIssuer (opaque tokens backed by the sessions table). Both resolve to
// the same Identity.
package auth

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

// Identity is what a resolved session exposes to handlers.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

// IdentityFromAccount copies the public account fields into an Identity.
func IdentityFromAccount(a *models.Account) Identity {
	return Identity{
		ID:      a.ID,
		Email:   a.Email,
		Name:    a.Name,
		Role:    a.Role,
		Company: a.Company,
		Phone:   a.Phone,
	}
}

// Issuer mints and checks session credentials. Lifetimes are fixed at
// issuance; resolving a credential never extends it.
type Issuer interface {
	Issue(ctx context.Context, id Identity) (token string, expiresAt time.Time, err error)
	// Resolve returns common.ErrInvalidToken or common.ErrTokenExpired for
	// credentials that must be rejected.
	Resolve(ctx context.Context, token string) (*Identity, error)
	Revoke(ctx context.Context, token string) error
}

type ctxKey struct{}

// WithIdentity stores the resolved identity on the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
