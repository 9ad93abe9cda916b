package httpx

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/devnet/pkg/jwtx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

var (
	// ErrMissingBearer is reported when the Authorization header is absent or
	// does not use the Bearer scheme.
	ErrMissingBearer = errors.New("httpx: missing bearer token")

	// ErrRoleDenied is reported by RequireRole.
	ErrRoleDenied = errors.New("httpx: role not permitted")
)

// TokenValidator checks a raw bearer token against the expected type.
type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string, expected jwtx.TokenType) (*jwtx.Claims, error)
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireToken rejects requests that do not carry a valid bearer token of the
// expected type. Accepted claims are stored in the request context.
func RequireToken(v TokenValidator, expected jwtx.TokenType, onErr ErrorWriter) Middleware {
	return RequireTokenOrCookie(v, expected, "", onErr)
}

// RequireTokenOrCookie is RequireToken for browser sessions whose token sits
// in an HttpOnly cookie. The Authorization header wins when both are present.
// TokenFromCookie reports which one authenticated the request.
func RequireTokenOrCookie(v TokenValidator, expected jwtx.TokenType, cookie string, onErr ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			fromCookie := false
			if !ok && cookie != "" {
				if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
					raw, ok, fromCookie = c.Value, true, true
				}
			}
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				onErr(w, r, ErrMissingBearer)
				return
			}

			claims, err := v.ValidateToken(r.Context(), raw, expected)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				onErr(w, r, err)
				return
			}

			ctx := slogx.With(r.Context(), "user_id", claims.User.UserID)
			ctx = contextWithClaims(ctx, claims, raw)
			if fromCookie {
				ctx = context.WithValue(ctx, CtxKeyFromCookie, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must sit behind RequireToken. It admits callers whose access
// token carries one of roles.
func RequireRole(onErr ErrorWriter, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFrom(r.Context())
			if !ok || !slices.Contains(roles, c.User.Role) {
				onErr(w, r, ErrRoleDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, tok, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
