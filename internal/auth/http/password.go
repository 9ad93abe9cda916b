package http

import (
	"net/http"

	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
)

type PasswordHandler struct {
	AuthService *service.AuthService
}

// HandleChange godoc
//
//	@Summary		Change password
//	@Description	Set a new password. Every other session is signed out and a new pair is returned.
//	@Tags			Password
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Old and new password"
//	@Success		200		{object}	authsdk.TokenResponse			"message, access_token, refresh_token"
//	@Failure		401		{object}	authsdk.APIError				"invalid_old_password, access_token_required"
//	@Failure		422		{object}	authsdk.APIError				"password_mismatch, validation_error"
//	@Router			/api/v1/auth/passwords/change [post].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateChangePassword(req); err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.AuthService.ChangePassword(r.Context(), httpx.UserIDFrom(r.Context()), service.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse("Password changed successfully", pair))
}

// HandleResetRequest godoc
//
//	@Summary		Request password reset
//	@Description	Mail a reset code. Always succeeds for well formed emails.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse	"message"
//	@Failure		422		{object}	authsdk.APIError		"validation_error"
//	@Router			/api/v1/auth/passwords/reset [post].
func (h *PasswordHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "Please check your email for instructions to reset your password",
	})
}

// HandleResetVerify godoc
//
//	@Summary		Verify reset code
//	@Description	Check a reset code without consuming it
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.OTPRequest		true	"Email and code"
//	@Success		200		{object}	authsdk.MessageResponse	"message"
//	@Failure		422		{object}	authsdk.APIError		"invalid_otp, user_not_found, validation_error"
//	@Router			/api/v1/auth/passwords/reset/verify [post].
func (h *PasswordHandler) HandleResetVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.OTPRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateOTP(req.OTP); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.AuthService.VerifyPasswordReset(r.Context(), req.Email, req.OTP.Int()); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "OTP verified, proceed to set a new password",
	})
}

// HandleResetComplete godoc
//
//	@Summary		Complete password reset
//	@Description	Set a new password with a valid reset code and sign out every session
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Email, code and new password"
//	@Success		200		{object}	authsdk.MessageResponse			"message"
//	@Failure		422		{object}	authsdk.APIError				"invalid_otp, password_mismatch, validation_error"
//	@Router			/api/v1/auth/passwords/reset/complete [post].
func (h *PasswordHandler) HandleResetComplete(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateResetPassword(req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.AuthService.CompletePasswordReset(r.Context(), service.ResetPasswordInput{
		Email:           req.Email,
		OTP:             req.OTP.Int(),
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "Your password has been reset, proceed to login",
	})
}
