package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrSignature   = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrTokenType   = errors.New("jwtx: unexpected token type")
	ErrWeakSecret  = errors.New("jwtx: secret is empty")
	ErrUnknownAlgo = errors.New("jwtx: unsupported algorithm")
)

// CodecConfig configures a Codec.
type CodecConfig struct {
	Secret     []byte
	Algorithm  string // HS256, HS384 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock. Tests use it to cross expiry boundaries.
	Now func() time.Time
}

// Codec mints and decodes HMAC signed tokens with a single shared secret.
type Codec struct {
	method     *jwt.SigningMethodHMAC
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrWeakSecret
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgo, alg)
	}

	c := &Codec{
		method:     method,
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = DefaultAccessTokenTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = DefaultRefreshTokenTTL
	}
	if c.now == nil {
		c.now = time.Now
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess mints an access token for u.
func (c *Codec) IssueAccess(u UserClaims) (string, Claims, error) {
	return c.issue(TokenAccess, u, c.accessTTL)
}

// IssueRefresh mints a refresh token for u. The role is dropped so a refresh
// token never carries authorisation data.
func (c *Codec) IssueRefresh(u UserClaims) (string, Claims, error) {
	u.Role = ""
	return c.issue(TokenRefresh, u, c.refreshTTL)
}

func (c *Codec) issue(typ TokenType, u UserClaims, ttl time.Duration) (string, Claims, error) {
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: typ,
		User:      u,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign %s token: %w", typ, err)
	}
	return signed, claims, nil
}

// Decode verifies the signature, the expiry and the claim shape of raw. The
// parser runs Claims.Validate for the shape. Decode does not check the token
// type against any expectation; callers do that.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrSignature
	case errors.Is(err, ErrTokenType), errors.Is(err, ErrMalformed):
		// Claims.Validate runs inside ParseWithClaims; keep its sentinel.
		return nil, err
	default:
		return nil, ErrMalformed
	}
	return claims, nil
}
