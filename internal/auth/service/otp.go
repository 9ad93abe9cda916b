package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
	"github.com/aussiebroadwan/devnet/pkg/idx"
)

// OTPService issues the six digit email codes used for verification and
// password reset. A user has at most one live code: generating a new one
// deletes the rest.
type OTPService struct {
	Store store.Store
	TTL   time.Duration
	Now   func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return domain.DefaultOTPTTL
}

// Generate replaces every code of the user with a fresh one.
func (s *OTPService) Generate(ctx context.Context, userID string) (int, error) {
	code, err := cryptox.RandomInt(domain.OTPMin, domain.OTPMax)
	if err != nil {
		return 0, oops.In("otp").Wrap(err)
	}

	now := s.now()
	otp := domain.OTP{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPs().DeleteUserOTPs(ctx, userID); err != nil {
			return err
		}
		return tx.OTPs().CreateOTP(ctx, otp)
	})
	if err != nil {
		return 0, oops.In("otp").With("user_id", userID).Wrapf(err, "store otp")
	}
	return code, nil
}

// Validate looks the code up without consuming it. Unknown and expired codes
// both fail with invalid_otp.
func (s *OTPService) Validate(ctx context.Context, userID string, code int) (domain.OTP, error) {
	otp, err := s.Store.OTPs().GetOTP(ctx, userID, code)
	if errors.Is(err, store.ErrNotFound) {
		return domain.OTP{}, domain.Failf(domain.CodeInvalidOTP, "no such otp for user %s", userID)
	}
	if err != nil {
		return domain.OTP{}, oops.In("otp").With("user_id", userID).Wrap(err)
	}
	if !otp.ValidAt(s.now(), s.ttl()) {
		return domain.OTP{}, domain.Failf(domain.CodeInvalidOTP, "otp for user %s expired", userID)
	}
	return otp, nil
}

// Invalidate deletes every code of the user.
func (s *OTPService) Invalidate(ctx context.Context, userID string) error {
	if err := s.Store.OTPs().DeleteUserOTPs(ctx, userID); err != nil {
		return oops.In("otp").With("user_id", userID).Wrap(err)
	}
	return nil
}
