package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"councellorx-be/internal/bootstrap"
	"councellorx-be/internal/config"
	"councellorx-be/internal/server"
	"councellorx-be/internal/tracer"
	"councellorx-be/pkg/database"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED=true)
	cfg := config.Load()
	shutdownTracer := tracer.InitTracer(cfg.Otel)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 2. Dependencies
	container := bootstrap.NewContainer(ctx, gormDB, cfg)

	// 3. Background workers
	go container.WebSocketHub.Run(ctx)

	if err := container.PersistRetryService.Consume(ctx); err != nil {
		log.Printf("Background: persist retry consumer failed to start: %v", err)
	}

	if container.AuditService != nil {
		if err := container.AuditService.Start(ctx); err != nil {
			log.Printf("Background: audit worker failed to start: %v", err)
		}
	}

	// 4. Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
