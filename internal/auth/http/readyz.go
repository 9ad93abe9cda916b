package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

// Pinger is a dependency the service cannot serve without.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 2 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the relational store and the Redis session store
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"one or more dependencies down"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db, sessions Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := &authsdk.HealthChecks{
			Database: probe(ctx, "database", db),
			Sessions: probe(ctx, "sessions", sessions),
		}

		status, code := "ok", http.StatusOK
		if checks.Database != "ok" || checks.Sessions != "ok" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// probe reports "ok" or a short failure. Error detail goes to the log only.
func probe(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "error: not configured"
	}
	if err := p.Ping(ctx); err != nil {
		slogx.FromContext(ctx).Warn("readiness check failed", "dependency", name, "err", err)
		return "error: unavailable"
	}
	return "ok"
}
