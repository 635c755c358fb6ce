// Package app assembles the API server from its parts.
package app

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mlimi/config"
	"mlimi/database"
	"mlimi/pkg/logging"
	"mlimi/pkg/metrics"
	"mlimi/pkg/middleware"
	"mlimi/pkg/realtime"
	"mlimi/pkg/report"
	"mlimi/pkg/session"
	"mlimi/pkg/weather"
	"mlimi/router"

	authCtrlImp "mlimi/pkg/auth/controllerImp"
	authRepoImp "mlimi/pkg/auth/repositoryImp"
	authService "mlimi/pkg/auth/service"
	authSvcImp "mlimi/pkg/auth/serviceImp"

	profileCtrlImp "mlimi/pkg/profile/controllerImp"
	profileRepoImp "mlimi/pkg/profile/repositoryImp"
	profileSvcImp "mlimi/pkg/profile/serviceImp"

	farmCtrlImp "mlimi/pkg/farm/controllerImp"
	farmRepoImp "mlimi/pkg/farm/repositoryImp"
	farmSvcImp "mlimi/pkg/farm/serviceImp"

	consultCtrlImp "mlimi/pkg/consultation/controllerImp"
	consultRepoImp "mlimi/pkg/consultation/repositoryImp"
	consultSvcImp "mlimi/pkg/consultation/serviceImp"

	"mlimi/pkg/dashboard"
	healthCtrlImp "mlimi/pkg/health/controllerImp"
)

type App struct {
	Echo  *echo.Echo
	DB    *gorm.DB
	Hub   *realtime.Hub
	Auth  authService.AuthService
	Relay *realtime.RedisRelay // nil without REDIS_URL
	Peer  *session.RedisPeer   // nil without REDIS_URL
	rdb   *redis.Client
	log   *zap.Logger
}

// Open connects the configured database and migrates it.
func Open(cfg config.AppConfig) (*gorm.DB, error) {
	dsn := cfg.DBPath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.DBURL
	}
	db, err := database.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// New wires every feature onto db.
func New(cfg config.AppConfig, db *gorm.DB, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{DB: db, Hub: realtime.NewHub(log), log: log}
	if err := realtime.AttachGorm(db, a.Hub); err != nil {
		return nil, fmt.Errorf("attach change feed: %w", err)
	}
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.rdb = redis.NewClient(opt)
		a.Relay = realtime.NewRedisRelay(a.rdb, a.Hub, log)
		a.Hub.AddRelay(a.Relay)
	}

	// Repos
	profileRepo := profileRepoImp.New(db)
	farmRepo := farmRepoImp.New(db)
	consultRepo := consultRepoImp.New(db)

	// Sessions
	store := session.NewStore(cfg.JWTSecret, cfg.SessionTTL, profileRepo)
	if a.rdb != nil {
		a.Peer = session.NewRedisPeer(a.rdb, store, log)
		store.SetPeer(a.Peer)
	}

	// Services
	a.Auth = authSvcImp.NewAuthService(authRepoImp.New(db), profileRepo, store, cfg.AllowAdminSignup, log)
	profileSvc := profileSvcImp.NewProfileService(profileRepo, store, log)
	farmSvc := farmSvcImp.NewFarmService(farmRepo, log)
	consultSvc := consultSvcImp.NewConsultationService(consultRepo, farmRepo, consultSvcImp.Options{
		Strict: cfg.StrictLifecycle,
		Log:    log,
	})

	var wc weather.Client
	if cfg.WeatherAPIKey != "" {
		wc = weather.NewWeatherAPI(cfg.WeatherEndpoint, cfg.WeatherAPIKey)
	} else {
		wc = weather.NewMock()
	}
	weatherSvc := weather.NewService(wc, cfg.WeatherLocation, log)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(metrics.Middleware())
	e.Use(echoMiddleware.BodyLimit("10M"))

	a.Echo = router.New(
		e,
		middleware.RequireSession(store),
		authCtrlImp.NewAuthController(a.Auth),
		profileCtrlImp.New(profileSvc),
		farmCtrlImp.New(farmSvc),
		consultCtrlImp.New(consultSvc, a.Hub, log),
		dashboard.NewCtrl(dashboard.NewService(farmSvc, consultSvc, weatherSvc)),
		weather.NewCtrl(weatherSvc, newestFarmLocation(farmSvc)),
		report.NewCtrl(consultSvc, middleware.Profile),
		healthCtrlImp.NewHealthCtrl(db, a.rdb),
		metrics.Handler(),
	)
	return a, nil
}

func newestFarmLocation(farms dashboard.FarmLister) weather.LocationFunc {
	return func(c echo.Context) string {
		p := middleware.Profile(c)
		if p == nil {
			return ""
		}
		list, err := farms.List(c.Request().Context(), p.ID)
		if err != nil {
			return ""
		}
		return dashboard.PreferredLocation(list)
	}
}

// RunRelay blocks until ctx ends; it returns at once without redis.
func (a *App) RunRelay(ctx context.Context) {
	if a.Relay == nil {
		return
	}
	go func() {
		if err := a.Peer.Run(ctx); err != nil {
			a.log.Error("session peer stopped", zap.Error(err))
		}
	}()
	if err := a.Relay.Run(ctx); err != nil {
		a.log.Error("realtime relay stopped", zap.Error(err))
	}
}

func (a *App) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
