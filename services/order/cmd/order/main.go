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
	"orderhub/pkg/events"
	"orderhub/pkg/logging"
	"orderhub/services/order/internal/cache"
	"orderhub/services/order/internal/client"
	"orderhub/services/order/internal/config"
	"orderhub/services/order/internal/httpserver"
	"orderhub/services/order/internal/models"
	"orderhub/services/order/internal/repo"
	"orderhub/services/order/internal/search"
	"orderhub/services/order/internal/service"
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
	if err := database.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var userCache *cache.UserCache
	if cfg.RedisAddr != "" {
		userCache = cache.NewUserCache(cfg.RedisAddr)
		defer userCache.Close()
	}

	var searcher service.Searcher
	if cfg.ESURL != "" {
		idx, err := search.NewIndex([]string{cfg.ESURL}, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("search init: %v", err)
		}
		searcher = idx
	}

	var publisher service.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, "orderhub.orders")
		defer producer.Close()
		publisher = producer
	}

	svc := service.New(
		&repo.GormRepo{DB: database},
		client.New(cfg.UserURL),
		userCache,
		searcher,
		publisher,
	)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: svc},
		Logger:       logger,
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
