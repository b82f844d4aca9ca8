package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proid/proid/internal/api"
	"github.com/proid/proid/internal/attribute"
	"github.com/proid/proid/internal/auth"
	"github.com/proid/proid/internal/config"
	"github.com/proid/proid/internal/database"
	"github.com/proid/proid/internal/dataconsumer"
	"github.com/proid/proid/internal/upload"
	"github.com/proid/proid/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		slog.Error("failed to initialize upload store", "error", err)
		os.Exit(1)
	}

	userRepo := user.NewRepository(db.Pool())
	attrRepo := attribute.NewRepository(db.Pool())
	consumerRepo := dataconsumer.NewRepository(db.Pool())

	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	authService := auth.NewService(userRepo, issuer, cfg.BcryptCost)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:     db,
		Issuer:       issuer,
		AuthService:  authService,
		UserRepo:     userRepo,
		AttrRepo:     attrRepo,
		ConsumerRepo: consumerRepo,
		Uploads:      uploads,
		Version:      cfg.Version,
		Dev:          cfg.Development(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting proID server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
