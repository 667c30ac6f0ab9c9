package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/finboard/internal/api"
	"github.com/newthinker/finboard/internal/api/handler/web"
	"github.com/newthinker/finboard/internal/api/session"
	"github.com/newthinker/finboard/internal/backend"
	"github.com/newthinker/finboard/internal/config"
	"github.com/newthinker/finboard/internal/metrics"
	"github.com/newthinker/finboard/internal/newsfeed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const sessionSweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the finboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newBackend builds the API client, recording fetch metrics when reg is set.
func newBackend(cfg *config.Config, reg *metrics.Registry, log *zap.Logger) *backend.Client {
	client := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, log.Named("backend"))
	if reg != nil {
		client.SetRecorder(reg)
	}
	return client
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting finboard server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	var reg *metrics.Registry
	var gauge session.Gauge
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		gauge = reg
	}

	client := newBackend(cfg, reg, log)

	deps := web.Deps{
		Backend:   client,
		Dashboard: cfg.Dashboard,
		Logger:    log.Named("web"),
	}
	if cfg.News.RSSURL != "" {
		log.Info("using RSS news source", zap.String("url", cfg.News.RSSURL))
		deps.News = newsfeed.New(cfg.News.RSSURL, cfg.News.CacheTTL, log.Named("newsfeed"))
	}

	store := session.NewStore(cfg.Server.MaxSessions, cfg.Server.SessionTTL, gauge)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		TemplatesDir: cfg.Server.TemplatesDir,
		MetricsPath:  metricsPath,
		Version:      Version,
	}, api.Dependencies{
		Web:      deps,
		Sessions: store,
		Metrics:  reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go store.Run(ctx, sessionSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			log.Error("server error", zap.Error(err))
			return err
		}
	}

	log.Info("shutting down finboard server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
