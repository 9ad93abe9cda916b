package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	httpapi "github.com/aussiebroadwan/devnet/internal/auth/http"
	"github.com/aussiebroadwan/devnet/internal/auth/mail"
	"github.com/aussiebroadwan/devnet/internal/auth/oauth"
	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/internal/auth/session"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
	"github.com/aussiebroadwan/devnet/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/devnet/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
	"github.com/aussiebroadwan/devnet/pkg/metricsx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"

	metricsNamespace = "devnet"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metricsx.Metrics

	// Core dependencies
	db       store.Store
	redis    *redis.Client
	sessions *session.RedisStore
	codec    *jwtx.Codec
	mail     *mail.Dispatcher
	google   oauth.Provider

	// Services
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metricsx.New(metricsNamespace),
	}

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initRedis(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Migrate applies the schema for cfg's database and exits.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.ApplyMigrations()
}

// Handler is the fully wired HTTP handler, for tests that serve it themselves.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Start launches the background workers: mail delivery and housekeeping.
func (app *Application) Start() {
	app.mail.Start()
	app.housekeepingService.Start()
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Start()
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Requests are done, so nothing enqueues any more. Drain what is left.
	app.mail.Stop()

	err := app.closeStores()
	app.logger.Info("auth service stopped")
	return err
}

func (app *Application) closeStores() error {
	var errs []error
	if err := app.redis.Close(); err != nil {
		app.logger.Error("error closing redis", "error", err)
		errs = append(errs, err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, nil
	}
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := openStore(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initRedis connects the session store. Redis often starts alongside the
// service, so the first ping is retried.
func (app *Application) initRedis(ctx context.Context) error {
	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	app.redis = redis.NewClient(opts)

	backoff := retry.WithMaxRetries(5, retry.WithCappedDuration(2*time.Second, retry.NewExponential(200*time.Millisecond)))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.logger.Warn("redis not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = app.redis.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.sessions = session.NewRedisStore(app.redis, app.cfg.SessionKeyPrefix)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	hasher, err := cryptox.NewPasswordHasher(app.cfg.BcryptCost, pepper)
	if err != nil {
		return err
	}

	app.codec, err = jwtx.NewCodec(jwtx.CodecConfig{
		Secret:     []byte(app.cfg.JWTSecret),
		Algorithm:  app.cfg.JWTAlgorithm,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	sender, err := app.mailSender()
	if err != nil {
		return err
	}
	app.mail = mail.NewDispatcher(sender, app.logger, app.metrics, mail.DispatcherConfig{
		Workers:   app.cfg.MailWorkers,
		QueueSize: app.cfg.MailQueue,
	})

	if app.cfg.GoogleEnabled() {
		google, err := oauth.NewGoogle(oauth.GoogleConfig{
			ClientID:     app.cfg.GoogleClientID,
			ClientSecret: app.cfg.GoogleClientSecret,
			RedirectURL:  app.cfg.GoogleRedirectURL,
		})
		if err != nil {
			return err
		}
		app.google = google
		app.logger.Info("google sign-in enabled")
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		OTP:      &service.OTPService{Store: app.db, TTL: app.cfg.OTPTTL},
		Sessions: app.sessions,
		Tokens:   app.codec,
		Hasher:   hasher,
		Mail:     app.mail,
		Metrics:  app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.OTPTTL,
	)
	return nil
}

func (app *Application) mailSender() (mail.Sender, error) {
	if app.cfg.MailHost == "" {
		app.logger.Warn("MAIL_HOST not set, outgoing mail is logged instead of sent")
		return mail.LogSender{Logger: app.logger}, nil
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     app.cfg.MailHost,
		Port:     app.cfg.MailPort,
		Username: app.cfg.MailUsername,
		Password: app.cfg.MailPassword,
		From:     app.cfg.MailFrom,
		FromName: app.cfg.MailFromName,
		StartTLS: app.cfg.MailStartTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure smtp: %w", err)
	}
	return sender, nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authService,
		app.db,
		app.sessions,
		BuildVersion,
		app.logger,
		app.metrics,
	)
	router.OAuth = app.google
	router.FrontendCallbackURL = app.cfg.FrontendCallbackURL
	router.SecureCookies = app.cfg.SecureCookies
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
