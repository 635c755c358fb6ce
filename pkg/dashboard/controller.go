package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mlimi/pkg/apperr"
	"mlimi/pkg/middleware"
)

type Ctrl struct{ s *Service }

func NewCtrl(s *Service) *Ctrl { return &Ctrl{s} }

func (h *Ctrl) Get(c echo.Context) error {
	out, err := h.s.Summary(c.Request().Context(), middleware.Profile(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
