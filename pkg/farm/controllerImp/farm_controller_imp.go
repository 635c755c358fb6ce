package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mlimi/pkg/apperr"
	"mlimi/pkg/farm/controller"
	"mlimi/pkg/farm/service"
	"mlimi/pkg/middleware"
)

type farmCtrl struct{ s service.FarmService }

func New(s service.FarmService) controller.FarmController { return &farmCtrl{s} }

func (h *farmCtrl) Create(c echo.Context) error {
	var in service.FarmInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	f, err := h.s.Create(c.Request().Context(), middleware.UID(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *farmCtrl) List(c echo.Context) error {
	out, err := h.s.List(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *farmCtrl) Get(c echo.Context) error {
	f, err := h.s.Get(c.Request().Context(), c.Param("id"), middleware.UID(c))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *farmCtrl) Patch(c echo.Context) error {
	var in service.FarmPatch
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	f, err := h.s.UpdatePartial(c.Request().Context(), c.Param("id"), middleware.UID(c), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, f)
}
