// Docrefd serves the docref HTTP API.
//
// Configuration is read from ~/.config/docref/config.yaml (or the file given
// with -config) and overridden by DOCREF_* environment variables.
//
// Usage:
//
//	# Start server with defaults
//	docrefd
//
//	# Configure via environment
//	DOCREF_SERVER_HTTP_PORT=9090 DOCREF_EMBEDDING_PROVIDER=tei docrefd
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docref/internal/config"
	httpserver "github.com/fyrsmithlabs/docref/internal/http"
	"github.com/fyrsmithlabs/docref/internal/logging"
	"github.com/fyrsmithlabs/docref/internal/services"
	"github.com/fyrsmithlabs/docref/internal/telemetry"
)

const instrumentationName = "github.com/fyrsmithlabs/docref/cmd/docrefd"

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  docrefd [-config file]   Start the docref daemon\n")
			fmt.Fprintf(os.Stderr, "  docrefd version          Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docrefd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the server and blocks until ctx is cancelled.
//
// Startup order:
//  1. Load and validate configuration
//  2. Start telemetry, then the logger (which may bridge to OTEL)
//  3. Build the embedding gateway, resolver and compression service
//  4. Serve HTTP until ctx is done, then shut down gracefully
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	logger, err := logging.NewLogger(logging.FromSettings(cfg.Logging.Level, cfg.Logging.Format), tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info(ctx, "Starting docrefd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("compression", cfg.Compression.Enabled),
		zap.Bool("telemetry", tel.IsEnabled()))
	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.String("reason", h.Reason))
	}

	zl := logger.Underlying()
	meter := tel.Meter(instrumentationName)

	reg, err := services.Build(cfg, zl, meter)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Warn(ctx, "failed to close services", zap.Error(err))
		}
	}()

	var compressor httpserver.Compressor
	if svc := reg.Compression(); svc != nil {
		compressor = svc
	}

	srv, err := httpserver.NewServer(compressor, reg.Expander(), zl.Named("http"), &httpserver.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		EmitTrace: cfg.Compression.EmitTrace,
	},
		httpserver.WithMetricsHandler(tel.Handler()),
		httpserver.WithMeter(meter),
	)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info(ctx, "Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("metrics_endpoint", "/metrics"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
