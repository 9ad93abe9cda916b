package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/oauth"
	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/pkg/httpx"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
	"github.com/aussiebroadwan/devnet/pkg/metricsx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"

	_ "github.com/aussiebroadwan/devnet/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const apiPrefix = "/api/v1"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metricsx.Metrics

	db       Pinger
	sessions Pinger

	AuthService *service.AuthService

	// OAuth is nil when Google sign-in is not configured; its routes then
	// answer 404.
	OAuth               oauth.Provider
	FrontendCallbackURL string
	SecureCookies       bool
}

func NewRouter(
	authService *service.AuthService,
	db, sessions Pinger,
	buildVersion string,
	logger *slog.Logger,
	metrics *metricsx.Metrics,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		metrics:      metrics,
		db:           db,
		sessions:     sessions,
		AuthService:  authService,
	}

	// slogx runs first so the metrics middleware sees the request the mux
	// stamps with its pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.metrics.HTTPMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerSession()
	r.registerPassword()
	r.registerOAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			devnet Authentication API
//	@version		0.1.0
//	@description	Account, email verification and session lifecycle for devnet.
//	@description
//	@description				Access and refresh tokens are HMAC signed JWTs. Refresh tokens are single use: every refresh returns a new pair.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/devnet
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access or refresh JWT depending on the endpoint. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) accessToken() httpx.Middleware {
	return httpx.RequireToken(r.AuthService, jwtx.TokenAccess, writeError)
}

func (r *Router) refreshToken() httpx.Middleware {
	return httpx.RequireTokenOrCookie(r.AuthService, jwtx.TokenRefresh, refreshCookie, writeError)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{AuthService: r.AuthService}

	// Sign up and code checks are limited per address and target email.
	r.Mux.Handle("POST "+apiPrefix+"/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("POST "+apiPrefix+"/auth/verification",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification),
			httpx.RateLimitByIPAndEmail(httpx.ModerateLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("POST "+apiPrefix+"/auth/verification/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit, r.metrics.RateLimited),
		),
	)

	me := &MeHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET "+apiPrefix+"/auth/me",
		httpx.Chain(me,
			r.accessToken(),
			httpx.RequireRole(writeError, string(domain.RoleUser), string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.LenientLimit, r.metrics.RateLimited),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{AuthService: r.AuthService, SecureCookies: r.SecureCookies}

	r.Mux.Handle("POST "+apiPrefix+"/auth/token",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit, r.metrics.RateLimited),
		),
	)

	r.Mux.Handle("POST "+apiPrefix+"/auth/token/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.refreshToken(),
			httpx.RateLimitByUser(httpx.ModerateLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("POST "+apiPrefix+"/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.refreshToken(),
			httpx.RateLimitByUser(httpx.ModerateLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("POST "+apiPrefix+"/auth/logout/all",
		httpx.Chain(http.HandlerFunc(h.HandleLogoutAll),
			r.accessToken(),
			httpx.RateLimitByUser(httpx.ModerateLimit, r.metrics.RateLimited),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{AuthService: r.AuthService}

	// Old password checks are a credential guess, hence strict.
	r.Mux.Handle("POST "+apiPrefix+"/auth/passwords/change",
		httpx.Chain(http.HandlerFunc(h.HandleChange),
			r.accessToken(),
			httpx.RateLimitByUser(httpx.StrictLimit, r.metrics.RateLimited),
		),
	)

	r.Mux.Handle("POST "+apiPrefix+"/auth/passwords/reset",
		httpx.Chain(http.HandlerFunc(h.HandleResetRequest),
			httpx.RateLimitByIPAndEmail(httpx.ModerateLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("POST "+apiPrefix+"/auth/passwords/reset/verify",
		httpx.Chain(http.HandlerFunc(h.HandleResetVerify),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("POST "+apiPrefix+"/auth/passwords/reset/complete",
		httpx.Chain(http.HandlerFunc(h.HandleResetComplete),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit, r.metrics.RateLimited),
		),
	)
}

func (r *Router) registerOAuth() {
	h := &GoogleHandler{
		AuthService:         r.AuthService,
		Provider:            r.OAuth,
		FrontendCallbackURL: r.FrontendCallbackURL,
		SecureCookies:       r.SecureCookies,
	}

	r.Mux.Handle("GET "+apiPrefix+"/auth/login/google",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.LenientLimit, r.metrics.RateLimited),
		),
	)
	r.Mux.Handle("GET "+apiPrefix+"/auth/google/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit, r.metrics.RateLimited),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.db, r.sessions),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
