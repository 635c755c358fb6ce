package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mlimi/config"
	"mlimi/database"
	"mlimi/pkg/logging"
	"mlimi/pkg/userapi"
)

func main() {
	cfg := config.LoadUserAPI()
	log := logging.New(cfg.Env)
	defer log.Sync()

	db, err := database.OpenMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("mysql", zap.Error(err))
	}

	e := userapi.NewServer(userapi.NewHandler(userapi.NewStore(db), log), cfg.CORSOrigins, log)

	go func() {
		log.Info("user api listening", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
