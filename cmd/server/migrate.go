package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlimi/app"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.Open(opts.cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			opts.log.Info("schema up to date", zap.String("driver", opts.cfg.DBDriver))
			return nil
		},
	}
}
