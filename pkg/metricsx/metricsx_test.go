package metricsx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/devnet/pkg/metricsx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metricsx.Metrics
	require.NotPanics(t, func() {
		m.AuthEvent("login", "success")
		m.MailSent("welcome_message", "sent")
		m.RateLimited(httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestHTTPMiddlewareUsesPattern(t *testing.T) {
	m := metricsx.New("devnet")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := m.HTTPMiddleware(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	n, err := testutil.GatherAndCount(m.Registry(), "devnet_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, n, "one series per route/code pair")
}

func TestHandlerExposesAuthEvents(t *testing.T) {
	m := metricsx.New("devnet")
	m.AuthEvent("login", "success")
	m.AuthEvent("login", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `devnet_auth_events_total{event="login",outcome="success"} 2`)
}
