package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mlimi/pkg/apperr"
	"mlimi/pkg/middleware"
	"mlimi/pkg/profile/controller"
	"mlimi/pkg/profile/service"
)

type profileCtrl struct{ s service.ProfileService }

func New(s service.ProfileService) controller.ProfileController { return &profileCtrl{s} }

func (h *profileCtrl) List(c echo.Context) error {
	out, err := h.s.List(c.Request().Context())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *profileCtrl) Approve(c echo.Context) error { return h.setApproval(c, true) }

func (h *profileCtrl) Deactivate(c echo.Context) error { return h.setApproval(c, false) }

func (h *profileCtrl) setApproval(c echo.Context, approved bool) error {
	p, err := h.s.SetApproval(c.Request().Context(), c.Param("id"), approved)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *profileCtrl) Stats(c echo.Context) error {
	st, err := h.s.Stats(c.Request().Context())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *profileCtrl) UpdateMe(c echo.Context) error {
	var in service.ProfilePatch
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	p, err := h.s.UpdateOwn(c.Request().Context(), middleware.UID(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
