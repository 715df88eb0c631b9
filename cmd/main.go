package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/folio/internal/api"
	"github.com/bilgisen/folio/internal/bootstrap"
	"github.com/bilgisen/folio/internal/config"
	"github.com/bilgisen/folio/internal/contact"
	"github.com/bilgisen/folio/internal/email"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/middleware"
	"github.com/bilgisen/folio/internal/watcher"
	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: !cfg.IsProduction(),
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().
		Str("env", cfg.Env).
		Str("content_source", cfg.ContentSource).
		Msg("Starting application...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize content pipeline")
	}
	defer func() {
		log.Info().Msg("Closing render cache...")
		if err := pipeline.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing render cache")
		}
	}()

	// Warm the listing so integrity errors show up at boot
	if entries, err := pipeline.Updates.List(ctx); err != nil {
		log.Error().Err(err).Msg("Initial content load failed")
	} else {
		log.Info().Int("entries", len(entries)).Msg("Content loaded")
	}

	if cfg.WatchContent {
		startWatcher(ctx, pipeline)
	}

	if cfg.ResendAPIKey == "" || cfg.ContactEmail == "" {
		log.Warn().Msg("RESEND_API_KEY or CONTACT_EMAIL not set, contact form will fail")
	}
	validator := middleware.NewValidator()
	contactHandler := contact.NewHandler(
		email.NewResendClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.EmailTimeout),
		validator,
		contact.Config{From: cfg.ContactFrom, To: cfg.ContactEmail},
	)

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	handlers := api.NewHandlers(pipeline.Updates, pipeline.Now, contactHandler, pipeline.RenderCache, pipeline.Vocabulary)
	api.SetupRoutes(app, handlers, cfg.AdminAPIKey)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("Server error")
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func startWatcher(ctx context.Context, pipeline *bootstrap.Content) {
	log := logger.Get()

	dirs := pipeline.WatchDirs()
	if len(dirs) == 0 {
		log.Warn().Msg("WATCH_CONTENT only applies to filesystem content, ignoring")
		return
	}

	w, err := watcher.New(300*time.Millisecond, func(paths []string) {
		pipeline.Updates.Invalidate()
		pipeline.Now.Invalidate()
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to start content watcher")
		return
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("Failed to start content watcher")
			_ = w.Close()
			return
		}
	}

	go func() {
		defer w.Close()
		w.Run(ctx)
	}()
}
