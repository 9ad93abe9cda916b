//go:build e2e

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/devnet/pkg/authsdk"
)

// TestRegisterVerifyLogin tests the complete sign up flow:
// 1. Register an account
// 2. Login is refused until the email is verified
// 3. Verify with the mailed code
// 4. Login and read the profile
func TestRegisterVerifyLogin(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	user := uniqueUser(t)
	resp, err := client.Register(ctx, user)
	require.NoError(t, err)
	require.Equal(t, "Account Created! Check email to verify your account", resp.Message)

	_, err = client.Token(ctx, user.Email, user.Password)
	assertCode(t, err, authsdk.ErrorCodeAccountNotVerified, "Unverified account should not log in")

	code := waitForOTP(t, user.Email, subjectVerify)

	_, err = client.VerifyEmail(ctx, user.Email, wrongOTP(code))
	assertCode(t, err, authsdk.ErrorCodeInvalidOTP, "Wrong code should be rejected")

	verified, err := client.VerifyEmail(ctx, user.Email, code)
	require.NoError(t, err)
	require.Equal(t, "Email verified successfully", verified.Message)

	_, err = client.VerifyEmail(ctx, user.Email, code)
	assertCode(t, err, authsdk.ErrorCodeInvalidOTP, "Codes are single use")

	tok, err := client.Token(ctx, user.Email, user.Password)
	require.NoError(t, err)
	assertTokenResponse(t, tok)
	require.Equal(t, "Login successful", tok.Message)

	session := client.NewSessionFromTokens(tok.AccessToken, tok.RefreshToken, tok.ExpiresIn)
	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, user.Email, me.Email)
	require.Equal(t, user.Username, me.Username)
	require.Equal(t, user.FirstName, me.FirstName)
	require.True(t, me.IsEmailVerified)
	require.True(t, me.IsActive)
	require.NotEmpty(t, me.Profile.ID, "Profile is created with the account")
}

// TestRegisterDuplicates verifies email and username uniqueness.
func TestRegisterDuplicates(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	user := uniqueUser(t)
	_, err := client.Register(ctx, user)
	require.NoError(t, err)

	sameEmail := uniqueUser(t)
	sameEmail.Email = user.Email
	_, err = client.Register(ctx, sameEmail)
	assertCode(t, err, authsdk.ErrorCodeUserExists, "Duplicate email")

	sameUsername := uniqueUser(t)
	sameUsername.Username = user.Username
	_, err = client.Register(ctx, sameUsername)
	assertCode(t, err, authsdk.ErrorCodeUsernameExists, "Duplicate username")
}

// TestResendVerification verifies a resent code replaces the first one.
func TestResendVerification(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	user := uniqueUser(t)
	_, err := client.Register(ctx, user)
	require.NoError(t, err)
	first := waitForOTP(t, user.Email, subjectVerify)

	resp, err := client.ResendVerification(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, "OTP sent successfully", resp.Message)
	second := waitForOTP(t, user.Email, subjectVerify)

	if first != second {
		_, err = client.VerifyEmail(ctx, user.Email, first)
		assertCode(t, err, authsdk.ErrorCodeInvalidOTP, "Replaced code should be rejected")
	}

	_, err = client.VerifyEmail(ctx, user.Email, second)
	require.NoError(t, err)

	resp, err = client.ResendVerification(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, "Email address already verified. No OTP sent", resp.Message)

	_, err = client.ResendVerification(ctx, "nobody@devnet.test")
	assertCode(t, err, authsdk.ErrorCodeUserNotFound, "Unknown email")
}
