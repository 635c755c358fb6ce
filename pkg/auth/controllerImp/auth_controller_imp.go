package controllerImp

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mlimi/pkg/apperr"
	"mlimi/pkg/auth/controller"
	"mlimi/pkg/auth/service"
	"mlimi/pkg/middleware"
)

type authCtrl struct{ s service.AuthService }

func NewAuthController(s service.AuthService) controller.AuthController { return &authCtrl{s} }

func (h *authCtrl) SignUp(c echo.Context) error {
	var in service.SignUpInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	res, err := h.s.SignUp(c.Request().Context(), in)
	if err != nil {
		return apperr.Respond(c, err)
	}
	setCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusCreated, res)
}

func (h *authCtrl) SignIn(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	res, err := h.s.SignIn(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}
	setCookie(c, res.Token, res.ExpiresAt)
	return c.JSON(http.StatusOK, res)
}

func (h *authCtrl) SignOut(c echo.Context) error {
	h.s.SignOut(middleware.Token(c))
	setCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "redirect": "/"})
}

func (h *authCtrl) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Profile(c))
}

func setCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
