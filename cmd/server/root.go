package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlimi/config"
	"mlimi/pkg/logging"
)

// RootOptions is shared by every subcommand.
type RootOptions struct {
	Port   string
	DBPath string

	cfg config.AppConfig
	log *zap.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mlimi",
		Short: "Farm consultation API",
		Long: `mlimi serves the farmer, consultant and admin API.

Configuration comes from the environment (and .env when present);
flags override the matching variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = config.Load()
			if opts.Port != "" {
				opts.cfg.Port = opts.Port
			}
			if opts.DBPath != "" {
				opts.cfg.DBPath = opts.DBPath
			}
			if err := opts.cfg.Validate(); err != nil {
				return err
			}
			opts.log = logging.New(opts.cfg.Env)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Port, "port", "p", "", "listen port (PORT)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "sqlite database path (DB_PATH)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}
