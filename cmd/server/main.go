// Command main is the entry point for the EcomTrade backend server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/bootstrap"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/server"
)

// @title EcomTrade API
// @version 1.0
// @description Barter marketplace API: trade posts, trade requests and realtime trade events
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@ecomtrade.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	bootstrap.InitLogging(cfg, os.Getenv("LOG_LEVEL"))

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, rt.DB, rt.Redis)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	scheduler, err := rt.StartJobs(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		scheduler.Stop(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			middleware.Logger.Error("Server shutdown error", slog.Any("error", err))
		}
		rt.Close(shutdownCtx)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
