package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/internmatch/matcher/internal/app"
	"github.com/internmatch/matcher/internal/config"
	"github.com/internmatch/matcher/internal/handlers"
	"github.com/internmatch/matcher/internal/services"
)

func main() {
	cfg := config.Load()

	c, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := services.NewWorker(
		c.Matching,
		cfg.Worker.Concurrency,
		cfg.Worker.QueueSize,
		cfg.Worker.RefreshInterval,
		c.Log,
	)
	worker.Start(ctx)
	c.Log.Info("✅ Worker started successfully")

	matchHandler := handlers.NewMatchHandler(c.Matching, worker)

	server := fiber.New(fiber.Config{
		AppName:      "Internship Matching API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: customErrorHandler,
	})

	server.Use(recover.New())
	server.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := server.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	matchHandler.Register(api)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		c.Log.Info("🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := server.Shutdown(); err != nil {
			c.Log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	c.Log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := server.Listen(addr); err != nil {
		c.Log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
