package domain

import "time"

// TokenPair is what a successful login, refresh or password change returns.
type TokenPair struct {
	AccessToken  string
	RefreshToken string

	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session is the audit record of one refresh token. Whether the token is
// still usable is decided by the session allowlist, not by this row.
type Session struct {
	ID        string
	UserID    string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
