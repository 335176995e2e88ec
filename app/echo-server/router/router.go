package router

import (
	"skinTrack/internal/middleware"
	"skinTrack/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/me", handler.Me, authRequired)
	users.GET("/:id", handler.GetUserByID, authRequired, middleware.SelfOrAdmin())
	users.PUT("/:id", handler.UpdateUser, authRequired, middleware.SelfOrAdmin())
	users.DELETE("/:id", handler.DeleteUser, authRequired, middleware.AdminOnly())
}

func SetSessionRoutes(api *echo.Group, handler *rest.SessionHandler, authRequired echo.MiddlewareFunc) {
	sessions := api.Group("/sessions", authRequired)

	sessions.POST("", handler.CreateSession)
	sessions.GET("", handler.ListSessions)
	sessions.GET("/:id", handler.GetSession)
	sessions.POST("/:id/complete", handler.CompleteSession)
	sessions.POST("/:id/abandon", handler.AbandonSession)

	sessions.POST("/:id/check-ins", handler.AddCheckIn)
	sessions.PUT("/:id/check-ins/:checkInId/analysis", handler.LinkAnalysis)

	sessions.GET("/:id/report", handler.GetReport)
	sessions.GET("/:id/reliability", handler.GetReliability)
}

func SetAnalysisRoutes(api *echo.Group, handler *rest.SessionHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/analyses", handler.RecordAnalysis, authRequired)
}

func SetAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler, authRequired echo.MiddlewareFunc) {
	analytics := api.Group("/analytics", authRequired)

	analytics.POST("/statistics", handler.Statistics)
	analytics.POST("/anomalies", handler.Anomalies)
	analytics.POST("/jumps", handler.Jumps)
	analytics.POST("/forecast", handler.Forecast)
	analytics.POST("/reliability", handler.Reliability)
	analytics.POST("/lifestyle", handler.Lifestyle)
	analytics.POST("/products/attribution", handler.ProductAttribution)
	analytics.POST("/products/combination", handler.ProductCombination)
}
