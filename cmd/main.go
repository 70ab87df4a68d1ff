package main

import (
	"fmt"
	"os"

	"template-mailer/config"
	"template-mailer/migrations"
	"template-mailer/pkg/apperrors"
	"template-mailer/pkg/logger"
	"template-mailer/routes"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/main.go [server|migrate]")
		os.Exit(1)
	}

	config.InitConfig()
	logger.Init(logger.Config{
		Level:       logger.Level(viper.GetString("LOG_LEVEL")),
		Environment: viper.GetString("ENVIRONMENT"),
		ServiceName: "template-mailer",
	})
	config.InitDB()
	defer config.CloseDB()

	switch os.Args[1] {
	case "server":
		startServer()
	case "migrate":
		migrate()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func startServer() {
	log := logger.Get().WithComponent("server")

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(log)

	e.Use(logger.RequestLoggerMiddleware(log))
	e.Use(logger.RecoveryMiddleware(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{frontendOrigin()},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentLength, echo.HeaderContentDisposition},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	routes.RegisterRoutes(e)

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("Starting HTTP server", logger.Field{Key: "port", Value: port})
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server stopped", err)
	}
}

func frontendOrigin() string {
	if origin := viper.GetString("FRONTEND_URL"); origin != "" {
		return origin
	}
	return "http://localhost:3000"
}

func migrate() {
	log := logger.Get().WithComponent("migrate")

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set migration dialect", err)
	}
	if err := goose.Up(config.DB.DB, "."); err != nil {
		log.Fatal("Failed to apply migrations", err)
	}
	log.Info("Migrations applied")
}
