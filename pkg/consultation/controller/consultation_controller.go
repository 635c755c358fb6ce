package controller

import "github.com/labstack/echo/v4"

type ConsultationController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Queue(c echo.Context) error
	MarkActive(c echo.Context) error
	AddRecommendation(c echo.Context) error
	Stream(c echo.Context) error
}
