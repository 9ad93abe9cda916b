package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
)

const userColumns = `id, email, username, first_name, last_name, password_hash,
	is_active, is_email_verified, role, auth_provider, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u                domain.User
		role             string
		created, updated int64
		active, verified int
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash,
		&active, &verified, &role, &u.AuthProvider, &created, &updated)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.IsActive = active == 1
	u.IsEmailVerified = verified == 1
	u.Role = domain.Role(role)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash,
		boolInt(u.IsActive), boolInt(u.IsEmailVerified), string(u.Role), u.AuthProvider,
		toMillis(u.CreatedAt), toMillis(u.CreatedAt),
	)
	return mapUnique(err)
}

func (r *usersRepo) update(ctx context.Context, userID, set string, arg any) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+set+` = ?, updated_at = ? WHERE id = ?`,
		arg, toMillis(time.Now()), userID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.update(ctx, userID, "password_hash", hash)
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	return r.update(ctx, userID, "is_email_verified", 1)
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.update(ctx, userID, "is_active", boolInt(active))
}
