// Package models holds the server's persistent records.
package models

import "time"

// Account is a portal user. PasswordHash is empty for code-only and OAuth
// accounts. EmailVerified, once set, is never cleared.
type Account struct {
	ID            string
	Email         string
	Name          string
	Company       string
	Phone         string
	PasswordHash  string
	Role          string
	EmailVerified *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the account can sign in with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// Session is a server-side session row used by the database session strategy.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
