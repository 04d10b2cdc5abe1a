package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"orderhub/pkg/db"
	"orderhub/pkg/logging"
	"orderhub/services/auth/internal/client"
	"orderhub/services/auth/internal/config"
	"orderhub/services/auth/internal/httpserver"
	"orderhub/services/auth/internal/models"
	"orderhub/services/auth/internal/repo"
	"orderhub/services/auth/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.ServiceName, cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := database.AutoMigrate(&models.AuthUser{}, &models.RefreshToken{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := service.New(
		&repo.GormRepo{DB: database},
		client.New(cfg.UserURL),
		cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLHours)*time.Hour,
	)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Logger:      logger,
	})

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
