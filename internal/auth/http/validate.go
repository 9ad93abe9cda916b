package http

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/devnet/pkg/authsdk"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
	maxEmailLen    = 40
	maxNameLen     = 25
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,30}$`)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email is required")
	}
	if len(email) > maxEmailLen {
		return invalid("email must be at most 40 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email is not a valid address")
	}
	return nil
}

func validatePassword(field, pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < minPasswordLen || n > maxPasswordLen {
		return invalid(field + " must be between 6 and 128 characters")
	}
	return nil
}

func validateOTP(code authsdk.OTPCode) error {
	if !code.Valid() {
		return invalid("otp must be a 6 digit code")
	}
	return nil
}

func validateRegister(req authsdk.RegisterRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if !usernamePattern.MatchString(strings.TrimSpace(req.Username)) {
		return invalid("username must be 3 to 30 letters, digits, '_', '.' or '-'")
	}
	names := []struct{ field, v string }{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
	}
	for _, n := range names {
		v := strings.TrimSpace(n.v)
		if v == "" || utf8.RuneCountInString(v) > maxNameLen {
			return invalid(n.field + " is required and must be at most 25 characters")
		}
	}
	return validatePassword("password", req.Password)
}

func validateChangePassword(req authsdk.ChangePasswordRequest) error {
	if req.OldPassword == "" {
		return invalid("old_password is required")
	}
	if err := validatePassword("new_password", req.NewPassword); err != nil {
		return err
	}
	return validatePassword("confirm_password", req.ConfirmPassword)
}

func validateResetPassword(req authsdk.ResetPasswordRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := validateOTP(req.OTP); err != nil {
		return err
	}
	if err := validatePassword("new_password", req.NewPassword); err != nil {
		return err
	}
	return validatePassword("confirm_password", req.ConfirmPassword)
}
