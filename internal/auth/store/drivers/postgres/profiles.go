package postgres

import (
	"context"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

type profilesRepo struct {
	q querier
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO profiles (id, user_id, short_intro, bio, location, avatar_url,
			github, stack_overflow, tw, ln, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.UserID, p.ShortIntro, p.Bio, p.Location, p.AvatarURL,
		p.Github, p.StackOverflow, p.Twitter, p.LinkedIn, p.Website,
	)
	return mapErr("insert profile", err)
}

func (r *profilesRepo) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, short_intro, bio, location, avatar_url,
			github, stack_overflow, tw, ln, website, created_at, updated_at
		FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.ShortIntro, &p.Bio, &p.Location, &p.AvatarURL,
		&p.Github, &p.StackOverflow, &p.Twitter, &p.LinkedIn, &p.Website, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Profile{}, mapErr("select profile", err)
	}
	return p, nil
}
