package common

// SessionCookieName is the HttpOnly cookie carrying the session credential.
const SessionCookieName = "eastsecure_session"

// Roles assigned to accounts.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)
