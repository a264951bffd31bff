package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/lessonforge/internal/adapter/fsm"
	oteladapter "github.com/neomorfeo/lessonforge/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/lessonforge/internal/adapter/river"
	"github.com/neomorfeo/lessonforge/internal/adapter/sqlite"
	"github.com/neomorfeo/lessonforge/internal/app"

	handler "github.com/neomorfeo/lessonforge/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	port := envOrDefault("PORT", "8080")
	dbPath := envOrDefault("DATABASE_PATH", "lessonforge.db")

	ctx := context.Background()

	// --- Observability ---
	providers, err := oteladapter.Setup(ctx, oteladapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := oteladapter.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	publishWorker := &riveradapter.PublishWorker{}
	riverClient, err := riveradapter.Setup(ctx, db, publishWorker)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}

	queue := riveradapter.NewPublisher(riverClient)

	tenantRepo := oteladapter.NewTracingTenantRepository(store.Tenants())
	lessonRepo := oteladapter.NewTracingLessonRepository(store.Lessons())
	publisher := oteladapter.NewTracingPublisher(queue)
	publishQueue := oteladapter.NewTracingQueue(queue)

	// --- Application ---
	tenantSvc := app.NewTenantService(tenantRepo)
	lessonSvc := app.NewLessonService(lessonRepo, tenantRepo, fsm.New(), publisher, publishQueue)
	publishWorker.Bind(lessonSvc)

	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("lessonforge", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("lessonforge", "0.1.0"))
	handler.Register(api, tenantSvc, lessonSvc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("lessonforge listening", "port", port, "docs", "http://localhost:"+port+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}

	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("river stop", "error", err)
	}

	slog.Info("stopped")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
