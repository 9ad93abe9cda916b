package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	now := toMillis(time.Now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, short_intro, bio, location, avatar_url,
			github, stack_overflow, tw, ln, website, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.ShortIntro, p.Bio, p.Location, p.AvatarURL,
		p.Github, p.StackOverflow, p.Twitter, p.LinkedIn, p.Website, now, now,
	)
	return mapUnique(err)
}

func (r *profilesRepo) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	var (
		p                domain.Profile
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, short_intro, bio, location, avatar_url,
			github, stack_overflow, tw, ln, website, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.ID, &p.UserID, &p.ShortIntro, &p.Bio, &p.Location, &p.AvatarURL,
		&p.Github, &p.StackOverflow, &p.Twitter, &p.LinkedIn, &p.Website, &created, &updated)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}
