package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Services override them through config.
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 90 * 24 * time.Hour
)

// TokenType discriminates access from refresh tokens. It is carried in the
// token_type claim and checked on every decode.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

func (t TokenType) Valid() bool {
	return t == TokenAccess || t == TokenRefresh
}

// UserClaims identifies the token owner. Role is only set on access tokens.
type UserClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// Claims is the full payload of every token the service mints.
type Claims struct {
	jwt.RegisteredClaims

	TokenType TokenType  `json:"token_type"`
	User      UserClaims `json:"user"`
}

// JTI is the session identifier of a refresh token.
func (c *Claims) JTI() string { return c.ID }

// Validate checks the claim shape after the signature and expiry have been
// verified by the parser.
func (c *Claims) Validate() error {
	if !c.TokenType.Valid() {
		return ErrTokenType
	}
	if c.User.UserID == "" || c.ID == "" || c.ExpiresAt == nil {
		return ErrMalformed
	}
	return nil
}
