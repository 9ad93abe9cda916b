package authsdk

import (
	"context"
	"net/http"
)

// Register creates an account. The service mails a verification code.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/register", req, "", &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendVerification asks for a fresh verification code.
func (c *SDKClient) ResendVerification(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/verification", EmailRequest{Email: email}, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail submits the code from the verification mail.
func (c *SDKClient) VerifyEmail(ctx context.Context, email string, otp OTPCode) (*MessageResponse, error) {
	var out MessageResponse
	req := OTPRequest{Email: email, OTP: otp}
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/verification/verify", req, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Token logs in with email and password and returns the raw token pair.
func (c *SDKClient) Token(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/token", req, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login is Token wrapped in a Session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	tok, err := c.Token(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// RefreshToken rotates refreshToken. The presented token is spent whether or
// not the caller keeps the response.
func (c *SDKClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/token/refresh", nil, refreshToken, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes refreshToken.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	return c.call(ctx, http.MethodPost, APIPrefix+"/auth/logout", nil, refreshToken, nil, http.StatusOK)
}

// RequestPasswordReset always succeeds for well formed emails.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/passwords/reset", EmailRequest{Email: email}, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPasswordReset checks a reset code without spending it.
func (c *SDKClient) VerifyPasswordReset(ctx context.Context, email string, otp OTPCode) (*MessageResponse, error) {
	var out MessageResponse
	req := OTPRequest{Email: email, OTP: otp}
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/passwords/reset/verify", req, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompletePasswordReset sets the new password and signs out every session.
func (c *SDKClient) CompletePasswordReset(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, APIPrefix+"/auth/passwords/reset/complete", req, "", &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
