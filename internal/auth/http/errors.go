package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

// validationError is a request that failed input checks. Its message is
// shown to the client.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(msg string) error { return &validationError{msg: msg} }

// writeError renders err as the failure envelope. It has the shape of an
// httpx.ErrorWriter so the auth middleware reports failures the same way.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		authsdk.ErrValidation.WithMessage(ve.msg).WriteError(w)
		return
	case errors.Is(err, httpx.ErrBadJSON):
		authsdk.ErrValidation.WithMessage("Request body must be a valid JSON object").WriteError(w)
		return
	case errors.Is(err, httpx.ErrMissingBearer):
		authsdk.ErrNotAuthenticated.WriteError(w)
		return
	case errors.Is(err, httpx.ErrRoleDenied):
		authsdk.ErrInsufficientPermission.WriteError(w)
		return
	}

	code := domain.CodeOf(err)
	if code == domain.CodeServerError {
		slogx.LogError(r.Context(), "request failed", err)
	}
	authsdk.ErrorForCode(code).WriteError(w)
}
