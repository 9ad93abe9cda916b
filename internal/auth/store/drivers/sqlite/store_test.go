package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
	"github.com/aussiebroadwan/devnet/pkg/idx"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:sqlite-test-%d?mode=memory&cache=shared", dbSeq.Add(1))
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email, username string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$04$hash",
		IsActive:     true,
		Role:         domain.RoleUser,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "ada@example.com", "ada")

	t.Run("lookups", func(t *testing.T) {
		byID, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", byID.Email)
		require.True(t, byID.IsActive)
		require.False(t, byID.IsEmailVerified)
		require.Equal(t, domain.RoleUser, byID.Role)

		byEmail, err := s.Users().GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byName, err := s.Users().GetUserByUsername(ctx, "ada")
		require.NoError(t, err)
		require.Equal(t, u.ID, byName.ID)

		_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique violations name the column", func(t *testing.T) {
		err := s.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "ada@example.com", Username: "other"})
		require.ErrorIs(t, err, store.ErrEmailTaken)
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		err = s.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "other@example.com", Username: "ada"})
		require.ErrorIs(t, err, store.ErrUsernameTaken)
	})

	t.Run("updates", func(t *testing.T) {
		require.NoError(t, s.Users().MarkEmailVerified(ctx, u.ID))
		require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "$2a$04$other"))
		require.NoError(t, s.Users().SetActive(ctx, u.ID, false))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.IsEmailVerified)
		require.False(t, got.IsActive)
		require.Equal(t, "$2a$04$other", got.PasswordHash)

		require.ErrorIs(t, s.Users().MarkEmailVerified(ctx, "missing"), store.ErrNotFound)
	})
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "grace@example.com", "grace")

	require.NoError(t, s.Profiles().CreateProfile(ctx, domain.Profile{ID: idx.New().String(), UserID: u.ID, Github: "grace"}))

	p, err := s.Profiles().GetProfileByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "grace", p.Github)

	// One profile per user
	err = s.Profiles().CreateProfile(ctx, domain.Profile{ID: idx.New().String(), UserID: u.ID})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Foreign keys are enforced
	err = s.Profiles().CreateProfile(ctx, domain.Profile{ID: idx.New().String(), UserID: "missing"})
	require.Error(t, err)
}

func TestOTPs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "otp@example.com", "otp")

	old := time.Now().Add(-time.Hour)
	require.NoError(t, s.OTPs().CreateOTP(ctx, domain.OTP{ID: idx.New().String(), UserID: u.ID, Code: 111111, CreatedAt: old}))
	require.NoError(t, s.OTPs().CreateOTP(ctx, domain.OTP{ID: idx.New().String(), UserID: u.ID, Code: 222222, CreatedAt: time.Now()}))

	got, err := s.OTPs().GetOTP(ctx, u.ID, 111111)
	require.NoError(t, err)
	require.WithinDuration(t, old, got.CreatedAt, time.Millisecond)

	_, err = s.OTPs().GetOTP(ctx, u.ID, 333333)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.OTPs().DeleteOTPsCreatedBefore(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.OTPs().DeleteUserOTPs(ctx, u.ID))
	_, err = s.OTPs().GetOTP(ctx, u.ID, 222222)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "sess@example.com", "sess")

	now := time.Now()
	for i, jti := range []string{"jti-a", "jti-b", "jti-c"} {
		require.NoError(t, s.Sessions().CreateSession(ctx, domain.Session{
			ID:        idx.New().String(),
			UserID:    u.ID,
			JTI:       jti,
			IssuedAt:  now.Add(time.Duration(i) * time.Second),
			ExpiresAt: now.Add(time.Duration(i-1) * time.Hour),
		}))
	}

	require.NoError(t, s.Sessions().RevokeSession(ctx, "jti-a", now))
	n, err := s.Sessions().RevokeUserSessions(ctx, u.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n, "jti-a was already revoked")

	list, err := s.Sessions().ListUserSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "jti-c", list[0].JTI)
	for _, sess := range list {
		require.NotNil(t, sess.RevokedAt)
	}

	n, err = s.Sessions().DeleteSessionsExpiredBefore(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{ID: idx.New().String(), Email: "tx@example.com", Username: "tx"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Nested transactions are refused
	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err)
}
