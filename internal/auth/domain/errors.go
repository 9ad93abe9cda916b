package domain

import "github.com/samber/oops"

// Error codes. Every failure a caller can act on carries one of these as its
// oops code; the HTTP layer maps them to status codes and messages.
const (
	CodeNotAuthenticated       = "not_authenticated"
	CodeInvalidToken           = "invalid_token"
	CodeAccessTokenRequired    = "access_token_required"
	CodeRefreshTokenRequired   = "refresh_token_required"
	CodeUserExists             = "user_exists"
	CodeUsernameExists         = "username_exists"
	CodeInvalidCredentials     = "unauthorized"
	CodeInvalidOTP             = "invalid_otp"
	CodeAccountNotVerified     = "account_not_verified"
	CodeUserNotActive          = "forbidden"
	CodePasswordMismatch       = "password_mismatch"
	CodeInvalidOldPassword     = "invalid_old_password"
	CodeInsufficientPermission = "insufficient_permission"
	CodeUserNotFound           = "user_not_found"
	CodeNotFound               = "not_found"
	CodeValidation             = "validation_error"
	CodeServerError            = "server_error"
)

// Fail returns a tagged error for code.
func Fail(code string) error {
	return oops.Code(code).Errorf("%s", code)
}

// Failf is Fail with a detail message for logs. The detail is never shown to
// clients.
func Failf(code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// CodeOf returns the code carried by err, or CodeServerError for untagged
// errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if oe, ok := oops.AsOops(err); ok {
		if code, ok := oe.Code().(string); ok && code != "" {
			return code
		}
	}
	return CodeServerError
}

// IsCode reports whether err carries code.
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
