package authsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ============================================================================
// Common Types
// ============================================================================

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// OTPCode is a six digit code. It decodes from a JSON number or string and
// always encodes as a string so leading zeros survive.
type OTPCode string

var otpPattern = regexp.MustCompile(`^\d{6}$`)

func (c *OTPCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = OTPCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("otp must be a number or string: %w", err)
	}
	*c = OTPCode(n.String())
	return nil
}

// Valid reports whether the code is exactly six digits.
func (c OTPCode) Valid() bool { return otpPattern.MatchString(string(c)) }

// Int returns the numeric value. Only meaningful when Valid.
func (c OTPCode) Int() int {
	n, _ := strconv.Atoi(string(c))
	return n
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// EmailRequest carries only an email; used by resend and reset request.
type EmailRequest struct {
	Email string `json:"email"`
}

// OTPRequest is the body of the verify endpoints.
type OTPRequest struct {
	Email string  `json:"email"`
	OTP   OTPCode `json:"otp"`
}

// LoginRequest is the body of POST /api/v1/auth/token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login, refresh and password change.
type TokenResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ResetPasswordRequest struct {
	Email           string  `json:"email"`
	OTP             OTPCode `json:"otp"`
	NewPassword     string  `json:"new_password"`
	ConfirmPassword string  `json:"confirm_password"`
}

// ============================================================================
// User Types
// ============================================================================

type ProfileResponse struct {
	ID            string    `json:"id"`
	ShortIntro    string    `json:"short_intro"`
	Bio           string    `json:"bio"`
	Location      string    `json:"location"`
	AvatarURL     string    `json:"avatar_url"`
	Github        string    `json:"github"`
	StackOverflow string    `json:"stack_overflow"`
	Twitter       string    `json:"tw"`
	LinkedIn      string    `json:"ln"`
	Website       string    `json:"website"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserResponse is the body of GET /api/v1/auth/me.
type UserResponse struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Username        string          `json:"username"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	IsActive        bool            `json:"is_active"`
	IsEmailVerified bool            `json:"is_email_verified"`
	Role            string          `json:"role"`
	AuthProvider    string          `json:"auth_provider,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Profile         ProfileResponse `json:"profile"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the relational store connection status
	Database string `json:"database"`

	// Sessions indicates the Redis session store status
	Sessions string `json:"sessions"`
}
