package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
)

// SessionHandler serves login, refresh and logout.
type SessionHandler struct {
	AuthService *service.AuthService

	// SecureCookies applies to the refresh cookie of browser sessions.
	SecureCookies bool
}

func tokenResponse(msg string, pair domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		Message:      msg,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    max(int(time.Until(pair.AccessExpiresAt).Seconds()), 0),
	}
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Exchange email and password for an access and refresh token pair
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse	"message, access_token, refresh_token"
//	@Failure		401		{object}	authsdk.APIError		"unauthorized"
//	@Failure		403		{object}	authsdk.APIError		"account_not_verified, forbidden"
//	@Failure		422		{object}	authsdk.APIError		"validation_error"
//	@Router			/api/v1/auth/token [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		writeError(w, r, invalid("password is required"))
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse("Login successful", pair))
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotate a refresh token. The presented token stops working once this succeeds.
//	@Description	Browser sessions may send the refresh cookie instead of a bearer header; the rotated token then comes back only in that cookie.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse	"message, access_token, refresh_token"
//	@Failure		401	{object}	authsdk.APIError		"invalid_token, refresh_token_required, not_authenticated"
//	@Router			/api/v1/auth/token/refresh [post].
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.AuthService.Refresh(r.Context(), httpx.RawTokenFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := tokenResponse("Token refreshed successfully", pair)
	if httpx.TokenFromCookie(r.Context()) {
		setRefreshCookie(w, pair, h.SecureCookies)
		resp.RefreshToken = ""
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Revoke the presented refresh token, from the bearer header or the refresh cookie
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"message"
//	@Failure		401	{object}	authsdk.APIError		"invalid_token, refresh_token_required"
//	@Router			/api/v1/auth/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), httpx.RawTokenFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	if httpx.TokenFromCookie(r.Context()) {
		clearRefreshCookie(w, h.SecureCookies)
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged Out successfully"})
}

// HandleLogoutAll godoc
//
//	@Summary		Logout everywhere
//	@Description	Revoke every refresh token of the caller. Access tokens stay valid until they expire.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"message"
//	@Failure		401	{object}	authsdk.APIError		"invalid_token, access_token_required"
//	@Router			/api/v1/auth/logout/all [post].
func (h *SessionHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.LogoutAll(r.Context(), httpx.UserIDFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out of all sessions"})
}
