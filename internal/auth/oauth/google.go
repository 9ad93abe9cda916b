// Package oauth implements the Google sign-in flow: consent redirect, code
// exchange and the userinfo lookup.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/samber/oops"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider is the part of an OAuth2 identity provider the HTTP layer needs.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.OAuthIdentity, error)
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and UserInfoURL default to Google's; tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Enabled reports whether enough is configured to offer Google sign-in.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

type Google struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg GoogleConfig) (*Google, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("oauth: google client id, secret and redirect url are required")
	}
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = defaultUserInfoURL
	}

	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		userInfoURL: userInfo,
	}, nil
}

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// Exchange trades the callback code for a token and loads the profile. A
// code Google rejects is reported as invalid_token.
func (g *Google) Exchange(ctx context.Context, code string) (domain.OAuthIdentity, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.OAuthIdentity{}, oops.Code(domain.CodeInvalidToken).In("oauth").Wrapf(err, "exchange code")
	}

	resp, err := g.cfg.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return domain.OAuthIdentity{}, oops.In("oauth").Wrapf(err, "fetch userinfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.OAuthIdentity{}, oops.In("oauth").
			With("status", resp.StatusCode, "body", string(body)).
			Errorf("userinfo returned %d", resp.StatusCode)
	}

	var u googleUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&u); err != nil {
		return domain.OAuthIdentity{}, oops.In("oauth").Wrapf(err, "decode userinfo")
	}
	if u.ID == "" || u.Email == "" {
		return domain.OAuthIdentity{}, oops.In("oauth").Errorf("userinfo without id or email")
	}

	return domain.OAuthIdentity{
		Provider:      domain.AuthProviderGoogle,
		Subject:       u.ID,
		Email:         domain.NormalizeEmail(u.Email),
		EmailVerified: u.VerifiedEmail,
		FirstName:     u.GivenName,
		LastName:      u.FamilyName,
	}, nil
}

// NewState returns an unguessable value for the state parameter.
func NewState() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize256)
}
