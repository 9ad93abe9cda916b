package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/mail"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
	"github.com/aussiebroadwan/devnet/pkg/idx"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
	"github.com/aussiebroadwan/devnet/pkg/metricsx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

// SessionStore is the refresh token allowlist.
type SessionStore interface {
	Add(ctx context.Context, userID, jti string, ttl time.Duration) error
	Remove(ctx context.Context, userID, jti string) (bool, error)
	IsValid(ctx context.Context, userID, jti string) (bool, error)
	ClearAll(ctx context.Context, userID string) error
	Count(ctx context.Context, userID string) (int64, error)
	Rotate(ctx context.Context, userID, oldJTI, newJTI string, ttl time.Duration) (bool, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	VerifyDummy(plaintext string)
}

// MailQueue accepts mail for asynchronous delivery.
type MailQueue interface {
	Enqueue(msg mail.Message) bool
}

// AuthService owns the account and session lifecycle. Each refresh token jti
// moves from issued to exactly one of rotated, revoked or expired, and never
// comes back.
type AuthService struct {
	Store    store.Store
	OTP      *OTPService
	Sessions SessionStore
	Tokens   *jwtx.Codec
	Hasher   PasswordHasher
	Mail     MailQueue
	Metrics  *metricsx.Metrics
	Now      func() time.Time
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

type ResetPasswordInput struct {
	Email           string
	OTP             int
	NewPassword     string
	ConfirmPassword string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// observe counts the outcome of an auth event by error code.
func (s *AuthService) observe(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = domain.CodeOf(err)
	}
	s.Metrics.AuthEvent(event, outcome)
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.Fail(domain.CodeUserNotFound)
	}
	if err != nil {
		return domain.User{}, oops.In("auth").Wrapf(err, "load user by email")
	}
	return u, nil
}

func (s *AuthService) userByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.Fail(domain.CodeUserNotFound)
	}
	if err != nil {
		return domain.User{}, oops.In("auth").With("user_id", userID).Wrapf(err, "load user")
	}
	return u, nil
}

// createUser inserts the user and an empty profile in one transaction.
func (s *AuthService) createUser(ctx context.Context, u domain.User) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			ID:        idx.NewAt(u.CreatedAt).String(),
			UserID:    u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.CreatedAt,
		})
	})
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return domain.Failf(domain.CodeUserExists, "email %s taken", u.Email)
	case errors.Is(err, store.ErrUsernameTaken):
		return domain.Failf(domain.CodeUsernameExists, "username %s taken", u.Username)
	case err != nil:
		return oops.In("auth").With("email", u.Email).Wrapf(err, "create user")
	}
	return nil
}

// Register creates an unverified account and mails it a verification code.
// Mail and code generation failures are logged, the account still exists.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (u domain.User, err error) {
	defer func() { s.observe("register", err) }()

	email := domain.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.Failf(domain.CodeUserExists, "email %s taken", email)
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, oops.In("auth").Wrapf(err, "check email")
	}
	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, domain.Failf(domain.CodeUsernameExists, "username %s taken", username)
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, oops.In("auth").Wrapf(err, "check username")
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, oops.In("auth").Wrap(err)
	}

	now := s.now()
	u = domain.User{
		ID:        idx.NewAt(now).String(),
		Email:     email,
		Username:  username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),

		PasswordHash: hash,
		IsActive:     true,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.createUser(ctx, u); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID)

	if err := s.sendCode(context.WithoutCancel(ctx), u, mail.TemplateVerifyEmail); err != nil {
		slogx.LogError(ctx, "failed to send verification code", err)
	}
	return u, nil
}

// sendCode generates a fresh OTP for u and queues the mail carrying it.
func (s *AuthService) sendCode(ctx context.Context, u domain.User, tmpl mail.Template) error {
	code, err := s.OTP.Generate(ctx, u.ID)
	if err != nil {
		return err
	}
	s.send(u, tmpl, domain.FormatOTP(code))
	return nil
}

func (s *AuthService) send(u domain.User, tmpl mail.Template, otp string) {
	if s.Mail == nil {
		return
	}
	s.Mail.Enqueue(mail.Message{
		To:       u.Email,
		Template: tmpl,
		Data:     mail.Data{Name: u.FirstName, OTP: otp},
	})
}

// ResendVerification supersedes any earlier code with a new one. It reports
// true without sending anything when the email is already verified.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (alreadyVerified bool, err error) {
	defer func() { s.observe("resend_verification", err) }()

	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if u.IsEmailVerified {
		return true, nil
	}
	return false, s.sendCode(ctx, u, mail.TemplateVerifyEmail)
}

// VerifyEmail checks the code and marks the email verified. A correct code
// for an already verified account reports true and changes nothing.
func (s *AuthService) VerifyEmail(ctx context.Context, email string, code int) (alreadyVerified bool, err error) {
	defer func() { s.observe("verify_email", err) }()

	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if _, err := s.OTP.Validate(ctx, u.ID, code); err != nil {
		return false, err
	}
	if u.IsEmailVerified {
		return true, nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().MarkEmailVerified(ctx, u.ID); err != nil {
			return err
		}
		return tx.OTPs().DeleteUserOTPs(ctx, u.ID)
	})
	if err != nil {
		return false, oops.In("auth").With("user_id", u.ID).Wrapf(err, "mark verified")
	}

	slogx.FromContext(ctx).Info("email verified", "user_id", u.ID)
	s.send(u, mail.TemplateWelcome, "")
	return false, nil
}

// Login exchanges credentials for a token pair. Unknown email and wrong
// password fail identically, including in timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (pair domain.TokenPair, err error) {
	defer func() { s.observe("login", err) }()

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, oops.In("auth").Wrapf(err, "load user")
	}
	if err != nil || !u.HasPassword() {
		s.Hasher.VerifyDummy(password)
		return domain.TokenPair{}, domain.Fail(domain.CodeInvalidCredentials)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return domain.TokenPair{}, domain.Failf(domain.CodeInvalidCredentials, "bad password for %s", u.ID)
	}
	if !u.IsEmailVerified {
		return domain.TokenPair{}, domain.Fail(domain.CodeAccountNotVerified)
	}
	if !u.IsActive {
		return domain.TokenPair{}, domain.Fail(domain.CodeUserNotActive)
	}

	return s.startSession(ctx, u)
}

// mint issues an access/refresh pair for u without registering it anywhere.
func (s *AuthService) mint(u domain.User) (domain.TokenPair, jwtx.Claims, error) {
	uc := jwtx.UserClaims{Email: u.Email, UserID: u.ID, Role: string(u.Role)}

	access, ac, err := s.Tokens.IssueAccess(uc)
	if err != nil {
		return domain.TokenPair{}, jwtx.Claims{}, oops.In("auth").Wrapf(err, "issue access token")
	}
	refresh, rc, err := s.Tokens.IssueRefresh(uc)
	if err != nil {
		return domain.TokenPair{}, jwtx.Claims{}, oops.In("auth").Wrapf(err, "issue refresh token")
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  ac.ExpiresAt.Time,
		RefreshExpiresAt: rc.ExpiresAt.Time,
	}, rc, nil
}

// startSession mints a pair and adds its refresh jti to the allowlist. The
// allowlist write is not tied to the caller's cancellation.
func (s *AuthService) startSession(ctx context.Context, u domain.User) (domain.TokenPair, error) {
	pair, rc, err := s.mint(u)
	if err != nil {
		return domain.TokenPair{}, err
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.Sessions.Add(ctx, u.ID, rc.JTI(), s.Tokens.RefreshTTL()); err != nil {
		return domain.TokenPair{}, oops.In("auth").With("user_id", u.ID).Wrapf(err, "register session")
	}
	s.recordSession(ctx, rc)
	return pair, nil
}

// recordSession writes the audit row. Failures are logged only; the
// allowlist is what decides validity.
func (s *AuthService) recordSession(ctx context.Context, rc jwtx.Claims) {
	err := s.Store.Sessions().CreateSession(ctx, domain.Session{
		ID:        idx.NewAt(rc.IssuedAt.Time).String(),
		UserID:    rc.User.UserID,
		JTI:       rc.JTI(),
		IssuedAt:  rc.IssuedAt.Time,
		ExpiresAt: rc.ExpiresAt.Time,
	})
	if err != nil {
		slogx.LogError(ctx, "failed to record session", oops.With("jti", rc.JTI()).Wrap(err))
	}
}

func (s *AuthService) revokeRecorded(ctx context.Context, jti string) {
	if err := s.Store.Sessions().RevokeSession(ctx, jti, s.now()); err != nil {
		slogx.LogError(ctx, "failed to revoke recorded session", oops.With("jti", jti).Wrap(err))
	}
}

// Refresh rotates a refresh token: the presented jti is consumed and a new
// pair is returned. Of two concurrent refreshes with the same token exactly
// one wins; the other gets invalid_token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (pair domain.TokenPair, err error) {
	defer func() { s.observe("refresh", err) }()

	claims, err := s.ValidateToken(ctx, refreshToken, jwtx.TokenRefresh)
	if err != nil {
		return domain.TokenPair{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.User.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, domain.Failf(domain.CodeInvalidToken, "token for unknown user %s", claims.User.UserID)
	}
	if err != nil {
		return domain.TokenPair{}, oops.In("auth").Wrapf(err, "load user")
	}
	if !u.IsActive {
		return domain.TokenPair{}, domain.Fail(domain.CodeUserNotActive)
	}

	pair, rc, err := s.mint(u)
	if err != nil {
		return domain.TokenPair{}, err
	}

	ctx = context.WithoutCancel(ctx)
	rotated, err := s.Sessions.Rotate(ctx, u.ID, claims.JTI(), rc.JTI(), s.Tokens.RefreshTTL())
	if err != nil {
		return domain.TokenPair{}, oops.In("auth").With("user_id", u.ID).Wrapf(err, "rotate session")
	}
	if !rotated {
		return domain.TokenPair{}, domain.Failf(domain.CodeInvalidToken, "refresh jti %s already consumed", claims.JTI())
	}

	s.revokeRecorded(ctx, claims.JTI())
	s.recordSession(ctx, rc)
	return pair, nil
}

// Logout revokes one refresh token. Presenting it a second time fails.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { s.observe("logout", err) }()

	claims, err := s.ValidateToken(ctx, refreshToken, jwtx.TokenRefresh)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	removed, err := s.Sessions.Remove(ctx, claims.User.UserID, claims.JTI())
	if err != nil {
		return oops.In("auth").With("user_id", claims.User.UserID).Wrapf(err, "remove session")
	}
	if !removed {
		return domain.Failf(domain.CodeInvalidToken, "refresh jti %s already revoked", claims.JTI())
	}

	s.revokeRecorded(ctx, claims.JTI())
	return nil
}

// LogoutAll revokes every refresh token of the user. Access tokens already
// issued stay valid until they expire.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (err error) {
	defer func() { s.observe("logout_all", err) }()

	ctx = context.WithoutCancel(ctx)
	live, err := s.Sessions.Count(ctx, userID)
	if err != nil {
		return oops.In("auth").With("user_id", userID).Wrapf(err, "count sessions")
	}
	if err := s.Sessions.ClearAll(ctx, userID); err != nil {
		return oops.In("auth").With("user_id", userID).Wrapf(err, "clear sessions")
	}

	n, err := s.Store.Sessions().RevokeUserSessions(ctx, userID, s.now())
	if err != nil {
		slogx.LogError(ctx, "failed to revoke recorded sessions", oops.With("user_id", userID).Wrap(err))
	}
	slogx.FromContext(ctx).Info("all sessions revoked", "user_id", userID, "sessions", live, "recorded", n)
	return nil
}

// ChangePassword sets a new password, signs out every session and returns a
// fresh pair for the caller.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) (pair domain.TokenPair, err error) {
	defer func() { s.observe("change_password", err) }()

	if in.NewPassword != in.ConfirmPassword {
		return domain.TokenPair{}, domain.Fail(domain.CodePasswordMismatch)
	}

	u, err := s.userByID(ctx, userID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !s.Hasher.Verify(in.OldPassword, u.PasswordHash) {
		return domain.TokenPair{}, domain.Fail(domain.CodeInvalidOldPassword)
	}

	if err := s.setPassword(ctx, u.ID, in.NewPassword); err != nil {
		return domain.TokenPair{}, err
	}
	// A reset code mailed before the change must not outlive it.
	if err := s.OTP.Invalidate(ctx, u.ID); err != nil {
		slogx.LogError(ctx, "failed to invalidate codes", err)
	}
	if err := s.LogoutAll(ctx, u.ID); err != nil {
		return domain.TokenPair{}, err
	}

	s.send(u, mail.TemplatePasswordChanged, "")
	return s.startSession(ctx, u)
}

func (s *AuthService) setPassword(ctx context.Context, userID, plaintext string) error {
	hash, err := s.Hasher.Hash(plaintext)
	if err != nil {
		return oops.In("auth").Wrap(err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return oops.In("auth").With("user_id", userID).Wrapf(err, "update password")
	}
	return nil
}

// RequestPasswordReset mails a reset code. Unknown emails succeed silently
// so the endpoint cannot be used to discover accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { s.observe("password_reset_request", err) }()

	u, err := s.userByEmail(ctx, email)
	if domain.IsCode(err, domain.CodeUserNotFound) {
		slogx.FromContext(ctx).Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	return s.sendCode(ctx, u, mail.TemplatePasswordReset)
}

// VerifyPasswordReset checks a reset code without consuming it, so the
// completion step can check it again.
func (s *AuthService) VerifyPasswordReset(ctx context.Context, email string, code int) (err error) {
	defer func() { s.observe("password_reset_verify", err) }()

	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = s.OTP.Validate(ctx, u.ID, code)
	return err
}

// CompletePasswordReset sets the new password, burns the code and signs out
// every session.
func (s *AuthService) CompletePasswordReset(ctx context.Context, in ResetPasswordInput) (err error) {
	defer func() { s.observe("password_reset_complete", err) }()

	if in.NewPassword != in.ConfirmPassword {
		return domain.Fail(domain.CodePasswordMismatch)
	}

	u, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if _, err := s.OTP.Validate(ctx, u.ID, in.OTP); err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return oops.In("auth").Wrap(err)
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			return err
		}
		return tx.OTPs().DeleteUserOTPs(ctx, u.ID)
	})
	if err != nil {
		return oops.In("auth").With("user_id", u.ID).Wrapf(err, "reset password")
	}

	if err := s.LogoutAll(ctx, u.ID); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset", "user_id", u.ID)
	s.send(u, mail.TemplatePasswordResetSuccess, "")
	return nil
}

// HandleOAuthLogin signs in the owner of a provider identity, creating the
// account on first sight. isNew reports whether it was created.
func (s *AuthService) HandleOAuthLogin(ctx context.Context, id domain.OAuthIdentity) (pair domain.TokenPair, isNew bool, err error) {
	defer func() { s.observe("oauth_login", err) }()

	if !id.EmailVerified {
		return domain.TokenPair{}, false, domain.Failf(domain.CodeAccountNotVerified, "%s email not verified by provider", id.Provider)
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(id.Email))
	switch {
	case errors.Is(err, store.ErrNotFound):
		u, err = s.HandleOAuthRegister(ctx, id)
		if err != nil {
			return domain.TokenPair{}, false, err
		}
		isNew = true
	case err != nil:
		return domain.TokenPair{}, false, oops.In("auth").Wrapf(err, "load user")
	default:
		if !u.IsEmailVerified {
			if err := s.Store.Users().MarkEmailVerified(ctx, u.ID); err != nil {
				return domain.TokenPair{}, false, oops.In("auth").With("user_id", u.ID).Wrapf(err, "mark verified")
			}
			u.IsEmailVerified = true
			if err := s.OTP.Invalidate(ctx, u.ID); err != nil {
				slogx.LogError(ctx, "failed to invalidate codes", err)
			}
		}
	}

	if !u.IsActive {
		return domain.TokenPair{}, false, domain.Fail(domain.CodeUserNotActive)
	}

	pair, err = s.startSession(ctx, u)
	if err != nil {
		return domain.TokenPair{}, false, err
	}
	return pair, isNew, nil
}

// usernameAttempts bounds the retries when a derived username collides.
const usernameAttempts = 5

// HandleOAuthRegister creates a verified, password-less account for a
// provider identity. The username is derived from the email local part.
func (s *AuthService) HandleOAuthRegister(ctx context.Context, id domain.OAuthIdentity) (domain.User, error) {
	now := s.now()
	base := usernameFromEmail(id.Email)

	for attempt := 0; attempt < usernameAttempts; attempt++ {
		username := base
		if attempt > 0 {
			n, err := cryptox.RandomInt(1000, 9999)
			if err != nil {
				return domain.User{}, oops.In("auth").Wrap(err)
			}
			username = base + strconv.Itoa(n)
		}

		if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, oops.In("auth").Wrapf(err, "check username")
		}

		u := domain.User{
			ID:              idx.NewAt(now).String(),
			Email:           domain.NormalizeEmail(id.Email),
			Username:        username,
			FirstName:       id.FirstName,
			LastName:        id.LastName,
			IsActive:        true,
			IsEmailVerified: true,
			Role:            domain.RoleUser,
			AuthProvider:    id.Provider,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		err := s.createUser(ctx, u)
		if domain.IsCode(err, domain.CodeUsernameExists) {
			continue
		}
		if err != nil {
			return domain.User{}, err
		}

		slogx.FromContext(ctx).Info("user registered", "user_id", u.ID, "provider", id.Provider)
		s.send(u, mail.TemplateWelcome, "")
		return u, nil
	}

	return domain.User{}, oops.In("auth").With("base", base).Errorf("no free username after %d attempts", usernameAttempts)
}

// usernameFromEmail keeps the characters of the local part a username may
// contain.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(domain.NormalizeEmail(email), "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
		if b.Len() >= 30 {
			break
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// Me returns the caller's account and profile. Only verified users with a
// known role may read it.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.UserWithProfile, error) {
	u, err := s.userByID(ctx, userID)
	if err != nil {
		return domain.UserWithProfile{}, err
	}
	if !u.IsEmailVerified {
		return domain.UserWithProfile{}, domain.Fail(domain.CodeAccountNotVerified)
	}
	if u.Role != domain.RoleUser && u.Role != domain.RoleAdmin {
		return domain.UserWithProfile{}, domain.Failf(domain.CodeInsufficientPermission, "role %q", u.Role)
	}

	p, err := s.Store.Profiles().GetProfileByUserID(ctx, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		p = domain.Profile{UserID: u.ID}
	} else if err != nil {
		return domain.UserWithProfile{}, oops.In("auth").With("user_id", u.ID).Wrapf(err, "load profile")
	}
	return domain.UserWithProfile{User: u, Profile: p}, nil
}
