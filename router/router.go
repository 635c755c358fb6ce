package router

import (
	"github.com/labstack/echo/v4"

	"mlimi/entities"
	"mlimi/pkg/middleware"
)

func New(
	e *echo.Echo,
	session echo.MiddlewareFunc,
	authCtrl interface {
		SignUp(echo.Context) error
		SignIn(echo.Context) error
		SignOut(echo.Context) error
		Me(echo.Context) error
	},
	profileCtrl interface {
		List(echo.Context) error
		Approve(echo.Context) error
		Deactivate(echo.Context) error
		Stats(echo.Context) error
		UpdateMe(echo.Context) error
	},
	farmCtrl interface {
		Create(echo.Context) error
		List(echo.Context) error
		Get(echo.Context) error
		Patch(echo.Context) error
	},
	consultCtrl interface {
		Create(echo.Context) error
		List(echo.Context) error
		Get(echo.Context) error
		Queue(echo.Context) error
		MarkActive(echo.Context) error
		AddRecommendation(echo.Context) error
		Stream(echo.Context) error
	},
	dashboardCtrl interface{ Get(echo.Context) error },
	weatherCtrl interface{ Current(echo.Context) error },
	reportCtrl interface{ Consultations(echo.Context) error },
	healthCtrl interface{ Health(echo.Context) error },
	metrics echo.HandlerFunc,
) *echo.Echo {
	e.GET("/health", healthCtrl.Health)
	e.GET("/metrics", metrics)

	auth := e.Group("/api/v1/auth")
	auth.POST("/signup", authCtrl.SignUp)
	auth.POST("/signin", authCtrl.SignIn)
	auth.POST("/signout", authCtrl.SignOut, session)
	auth.GET("/me", authCtrl.Me, session)

	api := e.Group("/api/v1", session)
	api.PATCH("/profile", profileCtrl.UpdateMe)
	api.GET("/weather", weatherCtrl.Current)

	farmer := middleware.RequireRole(entities.RoleFarmer)
	api.GET("/dashboard", dashboardCtrl.Get, farmer)
	api.POST("/farms", farmCtrl.Create, farmer)
	api.GET("/farms", farmCtrl.List, farmer)
	api.GET("/farms/:id", farmCtrl.Get, farmer)
	api.PATCH("/farms/:id", farmCtrl.Patch, farmer)

	api.POST("/consultations", consultCtrl.Create, farmer)
	api.GET("/consultations", consultCtrl.List)
	api.GET("/consultations/stream", consultCtrl.Stream)
	api.GET("/consultations/:id", consultCtrl.Get)

	responder := []echo.MiddlewareFunc{
		middleware.RequireRole(entities.RoleConsultant, entities.RoleAdmin),
		middleware.RequireApproved(),
	}
	api.GET("/consultations/queue", consultCtrl.Queue, responder...)
	api.POST("/consultations/:id/activate", consultCtrl.MarkActive, responder...)
	api.POST("/consultations/:id/recommendation", consultCtrl.AddRecommendation, responder...)

	admin := api.Group("/admin", middleware.RequireRole(entities.RoleAdmin))
	admin.GET("/profiles", profileCtrl.List)
	admin.POST("/profiles/:id/approve", profileCtrl.Approve)
	admin.POST("/profiles/:id/deactivate", profileCtrl.Deactivate)
	admin.GET("/stats", profileCtrl.Stats)
	admin.GET("/reports/consultations.xlsx", reportCtrl.Consultations)
	return e
}
