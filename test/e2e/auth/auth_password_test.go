//go:build e2e

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/devnet/pkg/authsdk"
)

// TestChangePassword verifies a password change keeps the caller signed in
// with a fresh pair and signs out every other session.
func TestChangePassword(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	user := registerVerified(t, client)
	session := performLogin(t, client, user.Email, user.Password)
	other := performLogin(t, client, user.Email, user.Password)
	otherRefresh := other.RefreshToken()

	err := session.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword:     "not-the-password",
		NewPassword:     "Changed123!",
		ConfirmPassword: "Changed123!",
	})
	assertCode(t, err, authsdk.ErrorCodeInvalidOldPassword, "Wrong old password")

	err = session.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword:     user.Password,
		NewPassword:     "Changed123!",
		ConfirmPassword: "Different123!",
	})
	assertCode(t, err, authsdk.ErrorCodePasswordMismatch, "Confirmation mismatch")

	err = session.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword:     user.Password,
		NewPassword:     "Changed123!",
		ConfirmPassword: "Changed123!",
	})
	require.NoError(t, err)

	_, err = client.RefreshToken(ctx, otherRefresh)
	assertCode(t, err, authsdk.ErrorCodeInvalidToken, "Other sessions are signed out")
	require.NoError(t, session.Refresh(ctx), "Caller continues with the new pair")

	_, err = client.Token(ctx, user.Email, user.Password)
	assertCode(t, err, authsdk.ErrorCodeInvalidCredentials, "Old password no longer works")
	performLogin(t, client, user.Email, "Changed123!")
}

// TestPasswordReset tests the three step reset:
// 1. Request a code by email
// 2. Verify the code
// 3. Set a new password with the same code
func TestPasswordReset(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	user := registerVerified(t, client)
	session := performLogin(t, client, user.Email, user.Password)

	resp, err := client.RequestPasswordReset(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, "Please check your email for instructions to reset your password", resp.Message)
	code := waitForOTP(t, user.Email, subjectReset)

	_, err = client.VerifyPasswordReset(ctx, user.Email, wrongOTP(code))
	assertCode(t, err, authsdk.ErrorCodeInvalidOTP, "Wrong reset code")

	verified, err := client.VerifyPasswordReset(ctx, user.Email, code)
	require.NoError(t, err)
	require.Equal(t, "OTP verified, proceed to set a new password", verified.Message)

	done, err := client.CompletePasswordReset(ctx, authsdk.ResetPasswordRequest{
		Email:           user.Email,
		OTP:             code,
		NewPassword:     "Reset123!",
		ConfirmPassword: "Reset123!",
	})
	require.NoError(t, err)
	require.Equal(t, "Your password has been reset, proceed to login", done.Message)

	_, err = client.CompletePasswordReset(ctx, authsdk.ResetPasswordRequest{
		Email:           user.Email,
		OTP:             code,
		NewPassword:     "Again123!",
		ConfirmPassword: "Again123!",
	})
	assertCode(t, err, authsdk.ErrorCodeInvalidOTP, "Reset codes are single use")

	assertCode(t, session.Refresh(ctx), authsdk.ErrorCodeInvalidToken, "Reset signs out every session")

	_, err = client.Token(ctx, user.Email, user.Password)
	assertCode(t, err, authsdk.ErrorCodeInvalidCredentials, "Old password no longer works")
	performLogin(t, client, user.Email, "Reset123!")
}

// TestPasswordResetUnknownEmail verifies the request does not reveal
// whether an account exists.
func TestPasswordResetUnknownEmail(t *testing.T) {
	client := setupAuthService(t)

	resp, err := client.RequestPasswordReset(t.Context(), "ghost@devnet.test")
	require.NoError(t, err)
	require.Equal(t, "Please check your email for instructions to reset your password", resp.Message)
}
