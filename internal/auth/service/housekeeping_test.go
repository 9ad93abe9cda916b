package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/pkg/idx"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada@example.com", "ada", "correct-horse")
	now := f.clock.Now()

	// The registration code is fresh; add an old one for another user and
	// two ledger rows, one expired.
	bob := f.register(t, "bob@example.com", "bob", "correct-horse")
	require.NoError(t, f.store.OTPs().DeleteUserOTPs(ctx, bob.ID))
	require.NoError(t, f.store.OTPs().CreateOTP(ctx, domain.OTP{
		ID: idx.New().String(), UserID: bob.ID, Code: 123456, CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, f.store.Sessions().CreateSession(ctx, domain.Session{
		ID: idx.New().String(), UserID: u.ID, JTI: "expired", IssuedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, f.store.Sessions().CreateSession(ctx, domain.Session{
		ID: idx.New().String(), UserID: u.ID, JTI: "live", IssuedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, domain.DefaultOTPTTL)
	hk.Now = f.clock.Now

	require.EqualValues(t, 2, hk.Cleanup(ctx))

	// Ada's registration code is still live.
	adaCode, err := strconv.Atoi(f.mail.msgs[0].Data.OTP)
	require.NoError(t, err)
	_, err = f.svc.OTP.Validate(ctx, u.ID, adaCode)
	require.NoError(t, err)

	sessions, err := f.store.Sessions().ListUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "live", sessions[0].JTI)

	// Nothing left to do.
	require.EqualValues(t, 0, hk.Cleanup(ctx))
}

func TestHousekeeping_StartStop(t *testing.T) {
	f := newFixture(t)
	// The fixture's sql and redis goroutines outlive this function; only
	// the housekeeping loop has to be gone.
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), 10*time.Millisecond, 0)
	require.Equal(t, domain.DefaultOTPTTL, hk.OTPTTL)

	hk.Start()
	time.Sleep(30 * time.Millisecond)
	hk.Stop()
}
