package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mindmap/internal/config"
	"mindmap/internal/editor"
	"mindmap/internal/handler"
	"mindmap/internal/hub"
	"mindmap/internal/observability"
	"mindmap/internal/repository/sqlite"
	"mindmap/internal/service"
	"mindmap/internal/session"
	"mindmap/internal/watcher"
)

var (
	serveAddr string
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (overrides database.path)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDB != "" {
		cfg.Database.Path = serveDB
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfgPath != "" {
		logger.Info("loaded config", zap.String("path", cfgPath))
	} else {
		logger.Info("no config file found, using defaults")
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	bus := service.NewEventBus()
	sseHub := hub.New(logger.Named("hub"))
	go sseHub.Run(ctx)
	go sseHub.Forward(ctx, bus)

	metrics := observability.NewCollector("mindmap")
	metrics.ObserveStreams(sseHub.Streams)
	svc := service.NewMindMapService(repo, bus, logger.Named("service"))
	sessions := session.NewManager(svc, session.Options{
		Editor: editor.Options{
			HistoryDepth: cfg.Editor.HistoryDepth,
			Commands:     cfg.Editor.CommandOptions(),
			Recorder:     metrics,
		},
		TTL:    cfg.Server.SessionTTL.Duration(),
		Bus:    bus,
		Logger: logger.Named("session"),
		Active: metrics.ActiveSessions,
	})
	go sessions.Run(ctx)

	if cfgPath != "" {
		go watchConfig(ctx, cfgPath, logger)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.NewRouter(handler.Deps{
			MindMaps:    svc,
			Sessions:    sessions,
			Events:      sseHub,
			Metrics:     metrics,
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      logger.Named("http"),
		}),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// watchConfig applies log level edits to the running server. Other
// settings need a restart.
func watchConfig(ctx context.Context, path string, logger *observability.Logger) {
	w := watcher.New(path, func(path string) {
		cfg, _, err := config.LoadFromPath(path)
		if err != nil {
			logger.Warn("ignoring config change", zap.String("path", path), zap.Error(err))
			return
		}
		if logLevel != "" {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			logger.Warn("ignoring log level", zap.Error(err))
		}
	}, logger.Named("config"))

	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("config watcher stopped", zap.Error(err))
	}
}
