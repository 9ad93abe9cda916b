package http

import (
	"net/http"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
)

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated user with their profile
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"user and profile"
//	@Failure		401	{object}	authsdk.APIError		"not_authenticated, invalid_token, access_token_required"
//	@Failure		403	{object}	authsdk.APIError		"account_not_verified, insufficient_permission"
//	@Router			/api/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Me(r.Context(), httpx.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}

func userResponse(u domain.UserWithProfile) authsdk.UserResponse {
	p := u.Profile
	return authsdk.UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		Role:            string(u.Role),
		AuthProvider:    u.AuthProvider,
		CreatedAt:       u.CreatedAt,
		Profile: authsdk.ProfileResponse{
			ID:            p.ID,
			ShortIntro:    p.ShortIntro,
			Bio:           p.Bio,
			Location:      p.Location,
			AvatarURL:     p.AvatarURL,
			Github:        p.Github,
			StackOverflow: p.StackOverflow,
			Twitter:       p.Twitter,
			LinkedIn:      p.LinkedIn,
			Website:       p.Website,
			UpdatedAt:     p.UpdatedAt,
		},
	}
}
