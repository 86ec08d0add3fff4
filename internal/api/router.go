package api

import (
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/api/controllers"
	"github.com/thebitsamuraii23/MusicJacker-bot-sub000/internal/app"
)

func RegisterRoutes(e *echo.Echo, app *app.Context) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	taskCtrl := &controllers.TaskController{App: app}

	e.GET("/health", taskCtrl.Health)
	e.GET("/api/tasks", taskCtrl.List)
	e.POST("/api/tasks/:owner/:id/cancel", taskCtrl.Cancel)
	e.GET("/api/history", taskCtrl.History)
}
