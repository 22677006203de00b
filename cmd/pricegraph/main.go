// Package main is the entry point for the token price discovery service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/stxforge/pricegraph/business/api"
	"github.com/stxforge/pricegraph/business/discovery"
	discoveryApp "github.com/stxforge/pricegraph/business/discovery/app"
	discoveryDI "github.com/stxforge/pricegraph/business/discovery/di"
	"github.com/stxforge/pricegraph/business/marketdata"
	marketdataDI "github.com/stxforge/pricegraph/business/marketdata/di"
	"github.com/stxforge/pricegraph/internal/apm"
	"github.com/stxforge/pricegraph/internal/config"
	"github.com/stxforge/pricegraph/internal/health"
	"github.com/stxforge/pricegraph/internal/logger"
	"github.com/stxforge/pricegraph/internal/metrics"
	"github.com/stxforge/pricegraph/internal/monolith"
	"github.com/stxforge/pricegraph/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	watchMode := flag.Bool("watch", false, "Run with the live price dashboard (TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pricegraph %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !*watchMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, *watchMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, watchMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set watch mode in config so modules know
	cfg.Engine.WatchMode = watchMode

	// Setup logger (only log to stderr outside watch mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if watchMode {
		// In watch mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting token price discovery service",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&marketdata.Module{}, // Must be first - provides pool snapshots and the anchor oracle
		&discovery.Module{},  // Depends on marketdata for snapshots
		&api.Module{},        // Depends on discovery for pricing
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if watchMode {
		// Watch mode: Start modules in background so the TUI shows immediately
		startFunc := func() error {
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			registerHealthChecks(healthServer, mono)
			svc := discoveryDI.GetDiscoveryService(mono.Services())
			go watchLoop(ctx, svc, cfg.Feed.RefreshInterval)
			return nil
		}
		return runWatch(ctx, startFunc)
	}

	// Server mode: Start modules synchronously, then serve until shutdown
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	registerHealthChecks(healthServer, mono)

	log.Info(ctx, "all modules started, serving prices")
	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return nil
}

// registerHealthChecks wires readiness to the market data the engine
// actually needs: a loaded pool snapshot and a reachable anchor oracle.
func registerHealthChecks(hs *health.Server, mono monolith.Monolith) {
	md := marketdataDI.GetMarketDataService(mono.Services())

	hs.RegisterCheck("snapshot", func(ctx context.Context) (bool, string) {
		snap, err := md.Snapshot(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, fmt.Sprintf("version %d, %d pools", snap.Version, len(snap.Pools))
	})

	hs.RegisterCheck("oracle", func(ctx context.Context) (bool, string) {
		if _, err := md.AnchorPrice(ctx); err != nil {
			return false, err.Error()
		}
		return true, ""
	})
}

// watchLoop prices all registered tokens on every feed refresh and pushes
// the results to the dashboard.
func watchLoop(ctx context.Context, svc *discoveryApp.Service, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pass(ctx, svc)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func pass(ctx context.Context, svc *discoveryApp.Service) {
	results, err := svc.PriceRegistered(ctx)
	if err != nil {
		ui.Send(ui.ErrorMsg{Error: err})
		return
	}
	if len(results) == 0 {
		return
	}

	msg := ui.PriceUpdateMsg{
		Results:         results,
		SnapshotVersion: results[0].SnapshotVersion,
		TakenAt:         results[0].CalculatedAt,
	}
	for _, res := range results {
		if !res.Details.AnchorPriceUSD.IsZero() {
			msg.AnchorUSD = res.Details.AnchorPriceUSD.StringFixed(0)
			break
		}
	}
	ui.Send(msg)
}

func runWatch(ctx context.Context, startFunc func() error) error {
	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run service startup in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
			// Welcome complete, start modules
		case <-ctx.Done():
			errCh <- nil
			return
		}

		// Start modules (connections happen here, TUI shows progress)
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for background errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
