package models

import "time"

// VerificationCode is a one-time numeric code mailed to an address. Used is
// terminal: a redeemed code never becomes usable again.
type VerificationCode struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
