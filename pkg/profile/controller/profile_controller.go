package controller

import "github.com/labstack/echo/v4"

type ProfileController interface {
	List(c echo.Context) error
	Approve(c echo.Context) error
	Deactivate(c echo.Context) error
	Stats(c echo.Context) error
	UpdateMe(c echo.Context) error
}
