package weather

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LocationFunc picks a location for the caller when none is given.
type LocationFunc func(c echo.Context) string

type Ctrl struct {
	s        *Service
	fallback LocationFunc
}

func NewCtrl(s *Service, fallback LocationFunc) *Ctrl { return &Ctrl{s: s, fallback: fallback} }

func (h *Ctrl) Current(c echo.Context) error {
	loc := c.QueryParam("q")
	if loc == "" && h.fallback != nil {
		loc = h.fallback(c)
	}
	return c.JSON(http.StatusOK, h.s.Current(c.Request().Context(), loc))
}
