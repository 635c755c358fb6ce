package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlimi/app"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.Open(opts.cfg)
	if err != nil {
		return err
	}
	a, err := app.New(opts.cfg, db, opts.log)
	if err != nil {
		return err
	}
	defer a.Close()

	go a.RunRelay(ctx)

	errc := make(chan error, 1)
	go func() {
		opts.log.Info("listening", zap.String("port", opts.cfg.Port), zap.String("env", opts.cfg.Env))
		errc <- a.Echo.Start(":" + opts.cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	opts.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(sctx)
}
