package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/devnet/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeNotAuthenticated       = "not_authenticated"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeAccessTokenRequired    = "access_token_required"
	ErrorCodeRefreshTokenRequired   = "refresh_token_required"
	ErrorCodeUserExists             = "user_exists"
	ErrorCodeUsernameExists         = "username_exists"
	ErrorCodeInvalidCredentials     = "unauthorized"
	ErrorCodeInvalidOTP             = "invalid_otp"
	ErrorCodeAccountNotVerified     = "account_not_verified"
	ErrorCodeUserNotActive          = "forbidden"
	ErrorCodePasswordMismatch       = "password_mismatch"
	ErrorCodeInvalidOldPassword     = "invalid_old_password"
	ErrorCodeInsufficientPermission = "insufficient_permission"
	ErrorCodeUserNotFound           = "user_not_found"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeValidation             = "validation_error"
	ErrorCodeRateLimited            = "rate_limited"
	ErrorCodeServerError            = "server_error"
)

// ============================================================================
// APIError - the failure envelope of every endpoint
// ============================================================================

// APIError is the body of every failed response:
//
//	{"status": "failure", "message": "...", "error_code": "...", "resolution": "..."}
//
// It is used by the server to write responses and by the SDK to report them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Status     string `json:"status"`
	Message    string `json:"message"`
	Code       string `json:"error_code"`
	Resolution string `json:"resolution,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e.withStatus())
}

// WithMessage returns a copy carrying a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

func (e *APIError) withStatus() APIError {
	cp := *e
	cp.Status = "failure"
	return cp
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrNotAuthenticated = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeNotAuthenticated,
		Message:    "Authentication credentials were not provided",
		Resolution: "Send an Authorization: Bearer header",
	}

	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidToken,
		Message:    "Token is invalid, expired or revoked",
		Resolution: "Please get a new token",
	}

	ErrAccessTokenRequired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeAccessTokenRequired,
		Message:    "Please provide a valid access token",
		Resolution: "Please get an access token",
	}

	ErrRefreshTokenRequired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeRefreshTokenRequired,
		Message:    "Please provide a valid refresh token",
		Resolution: "Please get a refresh token",
	}

	ErrUserExists = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeUserExists,
		Message:    "User with email already exists",
	}

	ErrUsernameExists = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeUsernameExists,
		Message:    "User with username already exists",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "No active account found with the given credentials",
	}

	ErrInvalidOTP = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeInvalidOTP,
		Message:    "OTP is invalid or expired",
		Resolution: "Request a new OTP",
	}

	ErrAccountNotVerified = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccountNotVerified,
		Message:    "Email not verified",
		Resolution: "Please check your email for verification details",
	}

	ErrUserNotActive = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeUserNotActive,
		Message:    "Your account has been disabled",
		Resolution: "Please contact support",
	}

	ErrPasswordMismatch = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodePasswordMismatch,
		Message:    "Passwords do not match",
	}

	ErrInvalidOldPassword = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidOldPassword,
		Message:    "Old password is incorrect",
	}

	ErrInsufficientPermission = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeInsufficientPermission,
		Message:    "You do not have enough permissions to perform this action",
	}

	ErrUserNotFound = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeUserNotFound,
		Message:    "User not found",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "Not found",
	}

	ErrValidation = &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       ErrorCodeValidation,
		Message:    "Request body is invalid",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "Too many requests. Please try again later.",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "Ooops! Something went wrong",
	}
)

var byCode = map[string]*APIError{}

func init() {
	for _, e := range []*APIError{
		ErrNotAuthenticated, ErrInvalidToken, ErrAccessTokenRequired, ErrRefreshTokenRequired,
		ErrUserExists, ErrUsernameExists, ErrInvalidCredentials, ErrInvalidOTP,
		ErrAccountNotVerified, ErrUserNotActive, ErrPasswordMismatch, ErrInvalidOldPassword,
		ErrInsufficientPermission, ErrUserNotFound, ErrNotFound, ErrValidation,
		ErrRateLimited, ErrServerError,
	} {
		byCode[e.Code] = e
	}
}

// ErrorForCode returns the predefined error for code, or ErrServerError when
// the code is unknown.
func ErrorForCode(code string) *APIError {
	if e, ok := byCode[code]; ok {
		return e
	}
	return ErrServerError
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a failed response into an *APIError. Bodies that
// are not the failure envelope become a generic error for the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     "failure",
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
