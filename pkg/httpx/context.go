package httpx

import (
	"context"

	"github.com/aussiebroadwan/devnet/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
	CtxKeyToken  ctxKey = "raw_token"

	CtxKeyFromCookie ctxKey = "token_from_cookie"
)

func contextWithClaims(ctx context.Context, c *jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.User.UserID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

// ClaimsFrom returns the claims stored by RequireToken.
func ClaimsFrom(ctx context.Context) (*jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(*jwtx.Claims)
	return c, ok && c != nil
}

// UserIDFrom returns the authenticated user id, or "" when the request is
// anonymous.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyUserID).(string)
	return id
}

// RawTokenFrom returns the bearer token that authenticated the request.
func RawTokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(CtxKeyToken).(string)
	return tok
}

// TokenFromCookie reports whether RequireTokenOrCookie took the token from
// its cookie rather than the Authorization header.
func TokenFromCookie(ctx context.Context) bool {
	v, _ := ctx.Value(CtxKeyFromCookie).(bool)
	return v
}
