package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/devnet/internal/auth/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(flags *configFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Apply migrations, connect to Redis and serve the HTTP API until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *configFlags) error {
	cfg, err := flags.load(cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return oops.Code("INIT_FAILED").With("operation", "initialize application").Wrap(err)
	}

	return application.Run()
}
