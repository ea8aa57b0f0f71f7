package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/haytac/message-formatter/internal/config"
	"github.com/haytac/message-formatter/internal/database"
	"github.com/haytac/message-formatter/internal/formatter"
	"github.com/haytac/message-formatter/internal/logging"
	"github.com/haytac/message-formatter/internal/server"
)

const shutdownTimeout = 10 * time.Second

// Application holds all dependencies for the service.
type Application struct {
	Config    *config.AppConfig
	DB        *database.DB
	Catalog   *CatalogCache
	Formatter *formatter.Formatter
	Server    *server.Server
}

// NewFormatter builds the pipeline with the configured markup overrides.
func NewFormatter(cfg config.FormatterConfig) *formatter.Formatter {
	opts := []formatter.Option{formatter.WithLogger(logging.Component("formatter"))}
	if cfg.LoadingImage != "" {
		opts = append(opts, formatter.WithLoadingImage(cfg.LoadingImage))
	}
	if cfg.RoomRoute != "" {
		opts = append(opts, formatter.WithRoomRoute(cfg.RoomRoute))
	}
	if cfg.DefaultEmoteSize > 0 {
		opts = append(opts, formatter.WithDefaultEmoteSize(cfg.DefaultEmoteSize))
	}
	return formatter.New(opts...)
}

// NewApplication connects the database, loads the catalog and builds the server.
func NewApplication(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	defaultLoc, err := formatter.ParseLocation(cfg.Server.DefaultLocation)
	if err != nil {
		return nil, fmt.Errorf("server.default_location: %w", err)
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	catalog := NewCatalogCache(database.NewCatalogStore(db))
	if err := catalog.Refresh(ctx); err != nil {
		db.Close()
		return nil, err
	}

	f := NewFormatter(cfg.Formatter)
	srv := server.New(f, catalog, server.Config{
		DefaultLocation: defaultLoc,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Sanitize:        cfg.Server.Sanitize,
		MaxMessageBytes: cfg.Server.MaxMessageBytes,
		RateLimitRPS:    cfg.Server.RateLimit.RPS,
		RateLimitBurst:  cfg.Server.RateLimit.Burst,
	}, logging.Component("server"))

	return &Application{
		Config:    cfg,
		DB:        db,
		Catalog:   catalog,
		Formatter: f,
		Server:    srv,
	}, nil
}

// Run serves HTTP until a shutdown signal arrives or ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go app.Catalog.Run(ctx, app.Config.Server.CatalogRefresh())

	httpServer := &http.Server{
		Addr:              app.Config.Server.Listen,
		Handler:           app.Server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", httpServer.Addr).Msg("Starting message formatter service")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case s := <-sigCh:
		log.Info().Str("signal", s.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Application context done, shutting down")
	case err := <-errCh:
		runErr = fmt.Errorf("http server: %w", err)
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	log.Info().Msg("Closing database connection...")
	if err := app.DB.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
	log.Info().Msg("Application shut down gracefully.")
	return runErr
}
