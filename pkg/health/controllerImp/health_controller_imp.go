package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var appStart = time.Now()

type HealthCtrl struct {
	db  *gorm.DB
	rdb *redis.Client // optional
}

func NewHealthCtrl(db *gorm.DB, rdb *redis.Client) *HealthCtrl { return &HealthCtrl{db: db, rdb: rdb} }

type check struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) pingDB(ctx context.Context) check {
	if h.db == nil {
		return check{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return check{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return check{Err: "ping: " + err.Error()}
	}
	return check{OK: true}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	checks := map[string]check{"database": h.pingDB(ctx)}
	if h.rdb != nil {
		rc := check{OK: true}
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			rc = check{Err: "redis: " + err.Error()}
		}
		checks["redis"] = rc
	}

	allOK := true
	for _, ch := range checks {
		allOK = allOK && ch.OK
	}
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().Format(time.RFC3339),
	})
}
