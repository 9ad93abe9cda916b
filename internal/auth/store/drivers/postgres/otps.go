package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

type otpsRepo struct {
	q querier
}

func (r *otpsRepo) CreateOTP(ctx context.Context, o domain.OTP) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO otps (id, user_id, code, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.UserID, o.Code, o.CreatedAt,
	)
	return mapErr("insert otp", err)
}

func (r *otpsRepo) GetOTP(ctx context.Context, userID string, code int) (domain.OTP, error) {
	var o domain.OTP
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, code, created_at FROM otps
		WHERE user_id = $1 AND code = $2
		ORDER BY created_at DESC LIMIT 1`, userID, code,
	).Scan(&o.ID, &o.UserID, &o.Code, &o.CreatedAt)
	if err != nil {
		return domain.OTP{}, mapErr("select otp", err)
	}
	return o, nil
}

func (r *otpsRepo) DeleteUserOTPs(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM otps WHERE user_id = $1`, userID)
	return mapErr("delete user otps", err)
}

func (r *otpsRepo) DeleteOTPsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM otps WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, mapErr("purge otps", err)
	}
	return tag.RowsAffected(), nil
}
