package domain

import (
	"fmt"
	"time"
)

// OTP codes are six digits without a leading zero.
const (
	OTPMin = 100000
	OTPMax = 999999

	DefaultOTPTTL = 5 * time.Minute
)

type OTP struct {
	ID        string
	UserID    string
	Code      int
	CreatedAt time.Time
}

// ValidAt reports whether the code is still usable at now. The code expires
// exactly at CreatedAt+ttl.
func (o OTP) ValidAt(now time.Time, ttl time.Duration) bool {
	return now.Before(o.CreatedAt.Add(ttl))
}

// FormatOTP renders a code for mail templates.
func FormatOTP(code int) string {
	return fmt.Sprintf("%06d", code)
}
