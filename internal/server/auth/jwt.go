package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity inside a signed session token. The profile
// fields are a snapshot taken when the token was issued.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func GenerateToken(id Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generateToken(id, secretKey, time.Now(), validityDuration)
}

func generateToken(id Identity, secretKey []byte, now time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID:  id.ID,
		Email:   id.Email,
		Name:    id.Name,
		Role:    id.Role,
		Company: id.Company,
		Phone:   id.Phone,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies an HS256 token and returns its claims. Expired tokens
// yield common.ErrTokenExpired; anything else wrong yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// JWTIssuer is the stateless session strategy.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secretKey string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secretKey), ttl: ttl, now: time.Now}
}

func (i *JWTIssuer) Issue(_ context.Context, id Identity) (string, time.Time, error) {
	now := i.now()
	token, err := generateToken(id, i.secret, now, i.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(i.ttl), nil
}

func (i *JWTIssuer) Resolve(_ context.Context, token string) (*Identity, error) {
	claims, err := ParseToken(token, i.secret)
	if err != nil {
		return nil, err
	}
	return &Identity{
		ID:      claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
		Company: claims.Company,
		Phone:   claims.Phone,
	}, nil
}

// Revoke is a no-op: a signed token stays valid until it expires.
func (i *JWTIssuer) Revoke(context.Context, string) error {
	return nil
}
