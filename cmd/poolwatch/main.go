package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/samijaber1/poolwatch/internal/alert"
	"github.com/samijaber1/poolwatch/internal/api"
	"github.com/samijaber1/poolwatch/internal/config"
	"github.com/samijaber1/poolwatch/internal/metrics"
	"github.com/samijaber1/poolwatch/internal/notify"
	"github.com/samijaber1/poolwatch/internal/tail"
	"github.com/samijaber1/poolwatch/internal/watch"
	"github.com/samijaber1/poolwatch/internal/window"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	log.Info().
		Str("log_path", cfg.LogPath).
		Float64("threshold", cfg.ErrorRateThreshold).
		Int("window_size", cfg.WindowSize).
		Dur("cooldown", cfg.AlertCooldown).
		Bool("maintenance", cfg.MaintenanceMode).
		Bool("webhook_configured", cfg.WebhookURL != "").
		Msg("starting poolwatch")

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("poolwatch exited with error")
		os.Exit(1)
	}

	log.Info().Msg("poolwatch stopped")
}

// loadConfig merges defaults, an optional YAML file, environment variables
// (including a .env file when present) and command line flags, in that
// order of precedence.
func loadConfig() (config.Config, error) {
	// A missing .env file is fine; a present one feeds ApplyEnv below.
	_ = godotenv.Load()

	configFile := flag.String("config", "", "optional YAML config file")
	logPath := flag.String("log-path", "", "access log file to follow")
	listen := flag.String("listen", "", "ops HTTP listen address (empty string in config disables)")
	logLevel := flag.String("log-level", "", "log level (trace|debug|info|warn|error)")
	logFormat := flag.String("log-format", "", "log format (console|json)")
	flag.Parse()

	cfg := config.DefaultConfig()

	if *configFile != "" {
		f, err := config.LoadFile(*configFile)
		if err != nil {
			return cfg, err
		}
		if err := cfg.ApplyFile(f); err != nil {
			return cfg, fmt.Errorf("%s: %w", *configFile, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	// Flags win over everything, but only when explicitly set.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-path":
			cfg.LogPath = *logPath
		case "listen":
			cfg.ListenAddr = *listen
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var notifier notify.Notifier
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(notify.DefaultConfig(cfg.WebhookURL))
	}

	dispatcher := alert.NewDispatcher(notifier, cfg.AlertCooldown, cfg.MaintenanceMode, log)
	watcher := watch.NewWatcher(window.New(cfg.WindowSize), cfg.ErrorRateThreshold, dispatcher, m, log)
	follower := tail.NewFollower(tail.DefaultConfig(cfg.LogPath), log)

	lines := make(chan string, 256)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return follower.Run(ctx, lines)
	})

	g.Go(func() error {
		return watcher.Run(ctx, lines)
	})

	if cfg.ListenAddr != "" {
		server := api.NewServer(watcher.Status(), follower.Opened, registry, cfg.ListenAddr, log)

		g.Go(func() error {
			return server.Start()
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
