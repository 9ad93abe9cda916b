package http

import (
	"net/http"

	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
)

// AccountHandler serves sign up and email verification.
type AccountHandler struct {
	AuthService *service.AuthService
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Create an unverified account and mail it a 6 digit verification code
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"New account"
//	@Success		201		{object}	authsdk.RegisterResponse	"message, email"
//	@Failure		422		{object}	authsdk.APIError			"user_exists, username_exists, validation_error"
//	@Failure		500		{object}	authsdk.APIError			"server_error"
//	@Router			/api/v1/auth/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRegister(req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Message: "Account Created! Check email to verify your account",
		Email:   u.Email,
	})
}

// HandleResendVerification godoc
//
//	@Summary		Resend verification code
//	@Description	Replace any outstanding verification code with a new one
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse	"status, message"
//	@Failure		422		{object}	authsdk.APIError		"user_not_found, validation_error"
//	@Router			/api/v1/auth/verification [post].
func (h *AccountHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	already, err := h.AuthService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "OTP sent successfully"
	if already {
		msg = "Email address already verified. No OTP sent"
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Status: "success", Message: msg})
}

// HandleVerifyEmail godoc
//
//	@Summary		Verify email
//	@Description	Confirm an email address with the code mailed at sign up
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.OTPRequest		true	"Email and code"
//	@Success		200		{object}	authsdk.MessageResponse	"message"
//	@Failure		422		{object}	authsdk.APIError		"invalid_otp, user_not_found, validation_error"
//	@Router			/api/v1/auth/verification/verify [post].
func (h *AccountHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
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

	already, err := h.AuthService.VerifyEmail(r.Context(), req.Email, req.OTP.Int())
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "Email verified successfully"
	if already {
		msg = "Email address already verified"
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msg})
}
