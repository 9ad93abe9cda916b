/*
Package authsdk provides a client SDK for the devnet authentication service.

# Overview

The package has two entry points:

  - SDKClient: unauthenticated operations (register, verify, login, password reset)
  - Session: authenticated operations with automatic access token refresh

A typical sign up:

	client := authsdk.NewSDKClient("https://api.example.com")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:     "ada@example.com",
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct-horse",
	})

	// The code arrives by mail.
	_, err = client.VerifyEmail(ctx, "ada@example.com", "123456")

	session, err := client.Login(ctx, "ada@example.com", "correct-horse")
	me, err := session.Me(ctx)

# Refresh Tokens

Refresh tokens are single use. Every refresh returns a new pair and spends
the old refresh token; presenting a spent token fails with invalid_token.
Session serialises refreshes so concurrent callers sharing one Session never
race each other.

# Error Handling

Every failure the service reports is returned as *APIError carrying the HTTP
status, the error_code and the message:

	_, err := client.Login(ctx, email, password)
	if authsdk.IsCode(err, authsdk.ErrorCodeAccountNotVerified) {
		// ask the user to check their mail
	}

# Thread Safety

Sessions are safe for concurrent use.
*/
package authsdk
