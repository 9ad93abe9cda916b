package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, username, first_name, last_name, password_hash,
	is_active, is_email_verified, role, auth_provider, created_at, updated_at`

type usersRepo struct {
	q querier
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsActive, &u.IsEmailVerified, &role, &u.AuthProvider, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapErr("select user", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash,
		u.IsActive, u.IsEmailVerified, string(u.Role), u.AuthProvider, u.CreatedAt,
	)
	return mapErr("insert user", err)
}

func (r *usersRepo) update(ctx context.Context, op, userID, set string, arg any) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE users SET `+set+` = $1, updated_at = now() WHERE id = $2`,
		arg, userID,
	)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.update(ctx, "update password", userID, "password_hash", hash)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.update(ctx, "verify email", userID, "is_email_verified", true)
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.update(ctx, "set active", userID, "is_active", active)
}
