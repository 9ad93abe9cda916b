package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

type otpsRepo struct {
	db dbtx
}

func (r *otpsRepo) CreateOTP(ctx context.Context, o domain.OTP) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otps (id, user_id, code, created_at) VALUES (?, ?, ?, ?)`,
		o.ID, o.UserID, o.Code, toMillis(o.CreatedAt),
	)
	return err
}

func (r *otpsRepo) GetOTP(ctx context.Context, userID string, code int) (domain.OTP, error) {
	var (
		o       domain.OTP
		created int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, code, created_at FROM otps
		WHERE user_id = ? AND code = ?
		ORDER BY created_at DESC LIMIT 1`, userID, code,
	).Scan(&o.ID, &o.UserID, &o.Code, &created)
	if err != nil {
		return domain.OTP{}, mapNotFound(err)
	}
	o.CreatedAt = fromMillis(created)
	return o, nil
}

func (r *otpsRepo) DeleteUserOTPs(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE user_id = ?`, userID)
	return err
}

func (r *otpsRepo) DeleteOTPsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
