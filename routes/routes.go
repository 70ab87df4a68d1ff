package routes

import (
	"template-mailer/config"
	"template-mailer/domain/auth"
	"template-mailer/domain/health"
	"template-mailer/domain/history"
	"template-mailer/domain/mail"
	"template-mailer/domain/preference"
	"template-mailer/domain/template"
	"template-mailer/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	templateHandler := template.NewHandler(template.NewStore(config.DB))
	historyStore := history.NewStore(config.DB)
	historyHandler := history.NewHandler(historyStore)
	mailHandler := mail.NewHandler(mail.NewService(
		mail.NewConnectionStore(config.DB),
		historyStore,
		mail.NewGmailClient(),
	))

	// Health probes
	e.GET("/health", health.HealthHandler)
	e.GET("/health/live", health.LivenessHandler)
	e.GET("/health/ready", health.ReadinessHandler)
	e.GET("/health/stats", health.StatsHandler)

	api := e.Group("/api")

	// Auth
	api.POST("/auth/register", auth.RegisterHandler)
	api.POST("/auth/login", auth.LoginHandler)
	api.GET("/auth/me", auth.MeHandler, middleware.JWTMiddleware)

	// Templates (protected)
	templates := api.Group("/templates", middleware.JWTMiddleware)
	templates.POST("", templateHandler.Create)
	templates.GET("", templateHandler.List)
	templates.POST("/preview", templateHandler.Preview)
	templates.POST("/import", templateHandler.Import)
	templates.GET("/:id", templateHandler.Get)
	templates.PUT("/:id", templateHandler.Update)
	templates.DELETE("/:id", templateHandler.Delete)
	templates.GET("/:id/export", templateHandler.Export)

	// Gmail connections and sending. The OAuth callback must stay
	// unauthenticated: Google redirects the browser here without our
	// bearer token, so ownership rides in the state parameter instead.
	gmail := api.Group("/gmail")
	gmail.GET("/callback", mailHandler.Callback)
	gmail.POST("/connect", mailHandler.Connect, middleware.JWTMiddleware)
	gmail.GET("/connections", mailHandler.Connections, middleware.JWTMiddleware)
	gmail.DELETE("/connections", mailHandler.Disconnect, middleware.JWTMiddleware)
	gmail.POST("/send", mailHandler.Send, middleware.JWTMiddleware)

	// Send history
	api.GET("/history", historyHandler.List, middleware.JWTMiddleware)

	// Per-user preferences
	api.GET("/user/preferences", preference.GetHandler, middleware.JWTMiddleware)
	api.PATCH("/user/preferences", preference.UpdateHandler, middleware.JWTMiddleware)
}
