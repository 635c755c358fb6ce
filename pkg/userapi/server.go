package userapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"mlimi/pkg/logging"
)

// NewServer wires the lookup route behind the CORS allow-list and a 10M
// body limit.
func NewServer(h *Handler, origins []string, log *zap.Logger) *echo.Echo {
	if log == nil {
		log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(logging.RequestLogger(log))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoMiddleware.BodyLimit("10M"))

	e.GET("/api/user/:id", h.GetUser)
	return e
}
