package domain

import "time"

// RoleAdmin is the only role allowed to call the administrator API.
const RoleAdmin = "admin"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated administrator.
type TokenIssuer interface {
	Issue(adminID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated administrator ID.
// Tokens without the admin role are rejected.
type TokenVerifier interface {
	Verify(token string) (adminID string, err error)
}
