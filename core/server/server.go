package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotswap-api/core/cache"
	"slotswap-api/core/config"
	"slotswap-api/core/database"
	"slotswap-api/core/logger"
	coremw "slotswap-api/core/middleware"
	"slotswap-api/core/queue"
	"slotswap-api/core/storage"
	"slotswap-api/modules/auth"
	"slotswap-api/modules/notification"
	notifworker "slotswap-api/modules/notification/worker"
	"slotswap-api/modules/slot"
	"slotswap-api/modules/swap"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Run boots the whole service: config, database, cache, queue, HTTP routes
// and the background notification worker. It blocks until SIGINT/SIGTERM and
// then drains gracefully.
func Run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Get()

	logger.Init(cfg.Log.Level)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	redisCache, err := cache.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	defer redisCache.Close()

	q := queue.New(cfg.Redis)
	defer q.Close()

	store := storage.NewS3(cfg.S3)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	mw := coremw.New(redisCache)
	api := e.Group("/api/v1")

	authRepo := auth.Init(api, db, redisCache, store, mw)
	slotRepo := slot.Init(api, db, mw)
	notifService := notification.Init(api, db, q, mw)
	swap.Init(api, db, slotRepo, authRepo, notifService, mw)

	// Background worker delivering queued notifications over Redis pub/sub.
	worker := queue.NewServer(cfg.Redis, cfg.Queue)
	mux := asynq.NewServeMux()
	notifworker.NewDeliveryWorker(redisCache).Register(mux)
	go func() {
		if err := worker.Run(mux); err != nil {
			logger.Error("Server:Run:Worker:Error:", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Run:Start:Error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:Run:ShuttingDown")
	worker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
