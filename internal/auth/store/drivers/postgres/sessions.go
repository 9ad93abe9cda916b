package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sessions (id, user_id, jti, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.JTI, s.IssuedAt, s.ExpiresAt,
	)
	return mapErr("insert session", err)
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, jti string, at time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sessions SET revoked_at = $1 WHERE jti = $2 AND revoked_at IS NULL`,
		at, jti,
	)
	return mapErr("revoke session", err)
}

func (r *sessionsRepo) RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE sessions SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`,
		at, userID,
	)
	if err != nil {
		return 0, mapErr("revoke user sessions", err)
	}
	return tag.RowsAffected(), nil
}

func (r *sessionsRepo) ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, jti, issued_at, expires_at, revoked_at
		FROM sessions WHERE user_id = $1
		ORDER BY issued_at DESC, id DESC`, userID)
	if err != nil {
		return nil, mapErr("list sessions", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.JTI, &s.IssuedAt, &s.ExpiresAt, &s.RevokedAt); err != nil {
			return nil, mapErr("scan session", err)
		}
		out = append(out, s)
	}
	return out, mapErr("list sessions", rows.Err())
}

func (r *sessionsRepo) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, mapErr("purge sessions", err)
	}
	return tag.RowsAffected(), nil
}
