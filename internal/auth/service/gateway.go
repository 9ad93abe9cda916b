package service

import (
	"context"

	"github.com/samber/oops"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
)

// ValidateToken is the single entry point for bearer tokens. Every decode
// failure, whatever the cause, is reported as invalid_token. Access tokens
// are stateless; a refresh token must also still be in the session allowlist.
func (s *AuthService) ValidateToken(ctx context.Context, raw string, expected jwtx.TokenType) (*jwtx.Claims, error) {
	claims, err := s.Tokens.Decode(raw)
	if err != nil {
		return nil, domain.Failf(domain.CodeInvalidToken, "decode token: %v", err)
	}

	if claims.TokenType != expected {
		if expected == jwtx.TokenRefresh {
			return nil, domain.Fail(domain.CodeRefreshTokenRequired)
		}
		return nil, domain.Fail(domain.CodeAccessTokenRequired)
	}

	if expected == jwtx.TokenRefresh {
		ok, err := s.Sessions.IsValid(ctx, claims.User.UserID, claims.JTI())
		if err != nil {
			return nil, oops.In("gateway").With("user_id", claims.User.UserID).Wrap(err)
		}
		if !ok {
			return nil, domain.Failf(domain.CodeInvalidToken, "refresh jti %s not in allowlist", claims.JTI())
		}
	}

	return claims, nil
}
