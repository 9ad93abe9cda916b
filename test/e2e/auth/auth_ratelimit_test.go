//go:build e2e

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/devnet/pkg/authsdk"
)

// TestRateLimitTokenEndpoint verifies the login endpoint is rate limited.
// Credential endpoints have strict limits (5 req/min per client and email)
// to prevent brute force attacks.
func TestRateLimitTokenEndpoint(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	user := registerVerified(t, client)

	for i := range 5 {
		_, err := client.Token(ctx, user.Email, "wrong-password")
		assertCode(t, err, authsdk.ErrorCodeInvalidCredentials, "Should not be rate limited yet")
		t.Logf("attempt %d rejected as invalid credentials", i+1)
	}

	_, err := client.Token(ctx, user.Email, user.Password)
	assertCode(t, err, authsdk.ErrorCodeRateLimited, "Sixth attempt should be rate limited")

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 429, apiErr.StatusCode)
}

// TestRateLimitIsPerEmail verifies one email hitting its limit does not
// lock out another from the same client.
func TestRateLimitIsPerEmail(t *testing.T) {
	client := setupAuthService(t)
	ctx := t.Context()

	victim := registerVerified(t, client)
	for range 6 {
		_, _ = client.Token(ctx, "attacker-"+victim.Email, "guess")
	}

	performLogin(t, client, victim.Email, victim.Password)
}
