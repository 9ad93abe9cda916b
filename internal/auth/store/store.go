package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// Unique violations on users are reported per column so the service can
	// tell a taken email from a taken username when two registrations race.
	ErrEmailTaken    = fmt.Errorf("%w: email", ErrAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrAlreadyExists)
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement it. Sub-repositories hang off the store so a transaction scoped
// store hands out transaction scoped repositories.
type Store interface {
	Users() Users
	Profiles() Profiles
	OTPs() OTPs
	Sessions() Sessions

	// ApplyMigrations brings the schema up to date. It is a no-op on a Tx.
	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts u. Returns ErrEmailTaken or ErrUsernameTaken on a
	// unique violation.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// MarkEmailVerified sets is_email_verified and bumps updated_at.
	MarkEmailVerified(ctx context.Context, userID string) error

	// SetActive enables or disables the account.
	SetActive(ctx context.Context, userID string, active bool) error
}

type Profiles interface {
	CreateProfile(ctx context.Context, p domain.Profile) error
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)
}

type OTPs interface {
	CreateOTP(ctx context.Context, o domain.OTP) error

	// GetOTP returns the code for the user regardless of age. Expiry is the
	// caller's decision.
	GetOTP(ctx context.Context, userID string, code int) (domain.OTP, error)

	// DeleteUserOTPs removes every code for the user.
	DeleteUserOTPs(ctx context.Context, userID string) error

	// DeleteOTPsCreatedBefore is housekeeping; it returns the rows removed.
	DeleteOTPsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sessions is the audit ledger of minted refresh tokens.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// RevokeSession stamps revoked_at on the jti if it is not revoked yet.
	RevokeSession(ctx context.Context, jti string, at time.Time) error

	// RevokeUserSessions stamps every open session of the user.
	RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int64, error)

	// ListUserSessions returns the user's sessions, newest first.
	ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error)

	// DeleteSessionsExpiredBefore is housekeeping; it returns the rows removed.
	DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
