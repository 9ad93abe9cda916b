package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/devnet/internal/auth/app"
)

// configFlags override environment configuration. Only flags set on the
// command line take effect.
type configFlags struct {
	envFile        string
	port           int
	logLevel       string
	logFormat      string
	databaseDriver string
	databaseFile   string
	databaseURL    string
	redisURL       string
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.IntVarP(&f.port, "port", "p", 8080, "HTTP port (PORT)")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error (LOG_LEVEL)")
	fs.StringVar(&f.logFormat, "log-format", "json", "json or text (LOG_FORMAT)")
	fs.StringVar(&f.databaseDriver, "database-driver", "sqlite", "sqlite or postgres (DATABASE_DRIVER)")
	fs.StringVar(&f.databaseFile, "database-file", "auth.db", "sqlite database file (DATABASE_FILE)")
	fs.StringVar(&f.databaseURL, "database-url", "", "postgres connection URL (DATABASE_URL)")
	fs.StringVar(&f.redisURL, "redis-url", "", "session store URL (REDIS_URL)")
}

// load reads .env and the environment, then applies explicitly set flags.
func (f *configFlags) load(fs *pflag.FlagSet) (app.Config, error) {
	if err := app.LoadDotEnv(f.envFile); err != nil {
		return app.Config{}, err
	}
	cfg := app.LoadConfig()

	if fs.Changed("port") {
		cfg.Port = f.port
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if fs.Changed("database-driver") {
		cfg.DatabaseDriver = f.databaseDriver
	}
	if fs.Changed("database-file") {
		cfg.DatabaseFile = f.databaseFile
	}
	if fs.Changed("database-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if fs.Changed("redis-url") {
		cfg.RedisURL = f.redisURL
	}
	return cfg, nil
}

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "devnet authentication service",
		Long: `Account registration, email verification and JWT session management
for devnet. Configuration comes from the environment (optionally a .env file)
and can be overridden with flags.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	flags.register(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(flags))
	cmd.AddCommand(NewMigrateCmd(flags))

	return cmd
}
