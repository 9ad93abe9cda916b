package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, jti, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.JTI, toMillis(s.IssuedAt), toMillis(s.ExpiresAt),
	)
	return mapUnique(err)
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, jti string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE jti = ? AND revoked_at IS NULL`,
		toMillis(at), jti,
	)
	return err
}

func (r *sessionsRepo) RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		toMillis(at), userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, jti, issued_at, expires_at, revoked_at
		FROM sessions WHERE user_id = ?
		ORDER BY issued_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var (
			s               domain.Session
			issued, expires int64
			revoked         sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.JTI, &issued, &expires, &revoked); err != nil {
			return nil, err
		}
		s.IssuedAt = fromMillis(issued)
		s.ExpiresAt = fromMillis(expires)
		s.RevokedAt = nullMillis(revoked)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
