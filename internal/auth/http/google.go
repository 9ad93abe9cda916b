package http

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/oauth"
	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

const (
	stateCookie   = "oauth_state"
	refreshCookie = "refresh"
	stateMaxAge   = 10 * time.Minute
)

// GoogleHandler runs the browser side of Google sign-in. The access token is
// handed to the frontend in the redirect, the refresh token only in an
// HttpOnly cookie that the refresh and logout routes accept in place of a
// bearer header.
type GoogleHandler struct {
	AuthService *service.AuthService
	Provider    oauth.Provider

	// FrontendCallbackURL receives ?access=...&is_new=... after sign-in.
	FrontendCallbackURL string

	// SecureCookies marks cookies Secure. Off only for plain HTTP development.
	SecureCookies bool
}

// HandleLogin godoc
//
//	@Summary		Google sign-in
//	@Description	Redirects to the Google consent screen
//	@Tags			OAuth
//	@Success		302
//	@Failure		404	{object}	authsdk.APIError	"Google sign-in not configured"
//	@Router			/api/v1/auth/login/google [get].
func (h *GoogleHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		authsdk.ErrNotFound.WriteError(w)
		return
	}

	state, err := oauth.NewState()
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Provider.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Google sign-in callback
//	@Description	Completes Google sign-in and redirects to the frontend with an access token
//	@Tags			OAuth
//	@Param			state	query	string	true	"State issued by the login endpoint"
//	@Param			code	query	string	true	"Authorization code"
//	@Success		302
//	@Failure		401	{object}	authsdk.APIError	"invalid_token"
//	@Failure		403	{object}	authsdk.APIError	"account_not_verified, forbidden"
//	@Failure		404	{object}	authsdk.APIError	"Google sign-in not configured"
//	@Router			/api/v1/auth/google/callback [get].
func (h *GoogleHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		authsdk.ErrNotFound.WriteError(w)
		return
	}

	// The state cookie is single use whatever the outcome.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	c, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || !cryptox.EqualTokens(c.Value, state) {
		slogx.FromContext(r.Context()).Warn("oauth state mismatch")
		writeError(w, r, domain.Failf(domain.CodeInvalidToken, "oauth state mismatch"))
		return
	}

	if e := r.URL.Query().Get("error"); e != "" {
		writeError(w, r, domain.Failf(domain.CodeInvalidToken, "provider denied consent: %s", e))
		return
	}

	id, err := h.Provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, isNew, err := h.AuthService.HandleOAuthLogin(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := url.Parse(h.FrontendCallbackURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := target.Query()
	q.Set("access", pair.AccessToken)
	q.Set("is_new", strconv.FormatBool(isNew))
	target.RawQuery = q.Encode()

	setRefreshCookie(w, pair, h.SecureCookies)
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// setRefreshCookie stores a browser session's refresh token. Cross-site
// frontends need SameSite=None, which browsers only accept on Secure cookies.
func setRefreshCookie(w http.ResponseWriter, pair domain.TokenPair, secure bool) {
	sameSite := http.SameSiteNoneMode
	if !secure {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

func clearRefreshCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
	})
}
