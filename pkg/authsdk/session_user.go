package authsdk

import (
	"context"
	"net/http"
)

// Me returns the authenticated user and profile.
// Automatically refreshes the access token if expired.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := s.client.call(ctx, http.MethodGet, APIPrefix+"/auth/me", nil, token, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogoutAll revokes every refresh token of the user, this session's included.
func (s *Session) LogoutAll(ctx context.Context) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	if err := s.client.call(ctx, http.MethodPost, APIPrefix+"/auth/logout/all", nil, token, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// ChangePassword sets a new password. Every other session is signed out and
// this one continues with the fresh pair the service returns.
func (s *Session) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}

	var out TokenResponse
	if err := s.client.call(ctx, http.MethodPost, APIPrefix+"/auth/passwords/change", req, token, &out, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.store(&out)
	s.mu.Unlock()
	return nil
}
