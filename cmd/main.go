package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/mercwork/internal/adapters/http/api"
	"github.com/okian/mercwork/internal/adapters/http/swagger"
	"github.com/okian/mercwork/internal/adapters/repository/sqlite"
	service "github.com/okian/mercwork/internal/app"
	"github.com/okian/mercwork/internal/config"
	"github.com/okian/mercwork/internal/domain/narrative"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "mercwork exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		log.Warn(ctx, "invalid log_format; keeping text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	log = logger.Get()

	store, err := sqlite.Open(ctx, cfg.DBPath, sqlite.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	svc, err := newService(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the service from cfg and seeds the program catalog.
func newService(ctx context.Context, cfg *config.Config, store *sqlite.Store, log logger.Logger) (*service.Service, error) {
	policy, err := service.ParseLethalPolicy(cfg.LethalPolicy)
	if err != nil {
		return nil, err
	}
	coordOpts := []service.CoordinatorOption{
		service.WithBurnRecovery(time.Duration(cfg.BurnRecoveryHours) * time.Hour),
		service.WithLethalPolicy(policy),
		service.WithDeathChance(cfg.DeathChance),
		service.WithExperiencePerSuccess(cfg.ExperiencePerSuccess),
		service.WithRecentWindow(time.Duration(cfg.RecentActivityDays) * 24 * time.Hour),
		service.WithNarrativeTimeout(time.Duration(cfg.NarrativeTimeoutMS) * time.Millisecond),
		service.WithFactions(cfg.Factions),
		service.WithCoordinatorLogger(log.Named("coordinator")),
	}
	if cfg.NarrativeURL != "" {
		coordOpts = append(coordOpts, service.WithGenerator(narrative.NewHTTPGenerator(cfg.NarrativeURL,
			narrative.WithTimeout(time.Duration(cfg.NarrativeTimeoutMS)*time.Millisecond),
			narrative.WithLogger(log.Named("narrative")),
		)))
	}

	svc, err := service.New(store,
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithSweepLimit(cfg.SweepLimit),
		service.WithCoordinatorOptions(coordOpts...),
	)
	if err != nil {
		return nil, fmt.Errorf("build service: %w", err)
	}

	programs, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	if err := svc.SeedPrograms(ctx, programs); err != nil {
		return nil, fmt.Errorf("seed programs: %w", err)
	}
	return svc, nil
}

// newMux registers the docs and the business API.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics copies service stats into gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if ranked, ok := stats["rankedCount"].(int); ok {
		metrics.UpdateRankedProfiles(ranked)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
