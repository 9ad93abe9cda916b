package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AuthProviderGoogle marks accounts created through Google sign-in. Password
// accounts leave the provider empty.
const AuthProviderGoogle = "google"

type User struct {
	ID              string
	Email           string // lower-cased, trimmed
	Username        string // immutable after creation
	FirstName       string
	LastName        string
	PasswordHash    string // bcrypt, empty for OAuth-only accounts
	IsActive        bool
	IsEmailVerified bool
	Role            Role
	AuthProvider    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPassword reports whether the account can log in with a password.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Profile struct {
	ID            string
	UserID        string
	ShortIntro    string
	Bio           string
	Location      string
	AvatarURL     string
	Github        string
	StackOverflow string
	Twitter       string
	LinkedIn      string
	Website       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UserWithProfile struct {
	User
	Profile Profile
}

// OAuthIdentity is what an external identity provider tells us about the
// person signing in.
type OAuthIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}
