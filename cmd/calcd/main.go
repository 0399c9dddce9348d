// Command calcd serves material estimates over HTTP and WebSocket.
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
	"path/filepath"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/coachpo/materialcalc/internal/calculator"
	"github.com/coachpo/materialcalc/internal/infra/config"
	httpserver "github.com/coachpo/materialcalc/internal/infra/server/http"
	"github.com/coachpo/materialcalc/internal/observability"
	"github.com/coachpo/materialcalc/internal/telemetry"
)

const (
	defaultConfigPath        = "config/app.yaml"
	loggerPrefix             = "calcd "
	shutdownTimeout          = 15 * time.Second
	stepTimeout              = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

func main() {
	cfgPathFlag := flag.String("config", "", fmt.Sprintf("Path to application configuration file (default: %s when present)", defaultConfigPath))
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stdout, loggerPrefix, log.LstdFlags|log.Lmicroseconds)
	observability.SetLogger(observability.NewStdLogger(logger, *debug))

	svc, err := newService(ctx, logger, resolveConfigPath(*cfgPathFlag))
	if err != nil {
		logger.Fatalf("start: %v", err)
	}
	svc.start()
	logger.Printf("API listening on %s", svc.server.Addr)

	<-ctx.Done()
	logger.Print("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	began := time.Now()
	svc.stop(shutdownCtx)
	logger.Printf("shutdown completed in %v", time.Since(began))
}

// service bundles what calcd runs between startup and shutdown.
type service struct {
	logger    *log.Logger
	server    *http.Server
	telemetry *telemetry.Provider
	lifecycle conc.WaitGroup
}

func newService(ctx context.Context, logger *log.Logger, configPath string) (*service, error) {
	appCfg, err := config.LoadOrDefault(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if configPath == "" {
		logger.Print("no configuration file, using defaults")
	}
	logger.Printf("configuration initialised: env=%s, material overrides=%d", appCfg.Environment, len(appCfg.Materials))

	settings, err := calculator.SettingsFromConfig(appCfg)
	if err != nil {
		return nil, fmt.Errorf("calculator settings: %w", err)
	}
	calc := calculator.New(settings)
	logger.Printf("materials available: %v", calc.Catalog().Names())

	provider, err := telemetry.NewProvider(ctx, telemetry.FromApp(appCfg.Environment, appCfg.Telemetry))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	if provider.Exporting() {
		logger.Printf("telemetry exporting to %s", appCfg.Telemetry.OTLPEndpoint)
	} else {
		logger.Print("telemetry disabled")
	}

	metrics := telemetry.NewCalculatorMetrics(provider.Meter("materialcalc"))
	return &service{
		logger:    logger,
		server:    buildAPIServer(appCfg, calc, metrics),
		telemetry: provider,
	}, nil
}

func buildAPIServer(appCfg config.AppConfig, calc *calculator.Calculator, metrics *telemetry.CalculatorMetrics) *http.Server {
	handler := httpserver.NewHandler(calc, httpserver.Options{
		Environment:  appCfg.Environment,
		MaxBatchSize: appCfg.APIServer.MaxBatchSize,
		MaxBodyBytes: appCfg.APIServer.MaxBodyBytes,
		RateLimit:    appCfg.RateLimit,
		Metrics:      metrics,
		Logger:       observability.Log(),
	})
	readHeaderTimeout := appCfg.APIServer.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}
	return &http.Server{
		Addr:              appCfg.APIServer.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func (s *service) start() {
	s.lifecycle.Go(func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("api server: %v", err)
		}
	})
}

type shutdownStep struct {
	name string
	run  func(context.Context) error
}

// stop runs each step in order with its own timeout; a failing step is
// logged and the rest still run.
func (s *service) stop(ctx context.Context) {
	steps := []shutdownStep{
		{name: "stopping api server", run: s.server.Shutdown},
		{name: "waiting for server goroutines", run: s.waitLifecycle},
		{name: "flushing telemetry", run: s.telemetry.Shutdown},
	}
	for _, step := range steps {
		stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		if err := step.run(stepCtx); err != nil {
			s.logger.Printf("shutdown: %s failed: %v", step.name, err)
		} else {
			s.logger.Printf("shutdown: %s completed", step.name)
		}
		cancel()
	}
}

func (s *service) waitLifecycle(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.lifecycle.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for goroutines: %w", ctx.Err())
	}
}

// resolveConfigPath prefers the flag, then the default file when it exists.
// An empty result means run on built-in defaults.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	path := filepath.Clean(defaultConfigPath)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
