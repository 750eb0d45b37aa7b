package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/convention/internal/adapters/http/api"
	"github.com/okian/convention/internal/adapters/http/site"
	"github.com/okian/convention/internal/adapters/http/swagger"
	app "github.com/okian/convention/internal/app"
	"github.com/okian/convention/internal/auth"
	"github.com/okian/convention/internal/bootstrap"
	"github.com/okian/convention/internal/config"
	"github.com/okian/convention/pkg/logger"
	"github.com/okian/convention/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants. Writes allow for slow video uploads.
const (
	readTimeout               = 2 * time.Minute
	writeTimeout              = 2 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// System metrics are collected by updateSystemMetrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWith(os.Stdout, logger.Format(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server failed", logger.Error(err))
		os.Exit(1)
	}
}

// application is a fully wired process.
type application struct {
	svc     *app.Service
	handler http.Handler
	closers []func() error
}

// newApplication builds the adapters, the service and the HTTP routes.
// The service is not started.
func newApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	start, err := cfg.StartTime()
	if err != nil {
		return nil, err
	}
	store, err := bootstrap.OpenStore(ctx, cfg, true)
	if err != nil {
		return nil, err
	}
	blobs, err := bootstrap.OpenStorage(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	notifier, err := bootstrap.NewNotifier(cfg, log.Named("notify"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svc := app.New(store, blobs,
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithNotifier(notifier),
		app.WithRegistrationFee(cfg.RegistrationFee),
		app.WithUploadLimits(int64(cfg.MaxReceiptMB)<<20, int64(cfg.MaxVideoMB)<<20),
		app.WithConventionStart(start),
		app.WithSite(bootstrap.Site(cfg)),
		app.WithPublicBaseURL(cfg.PublicBaseURL),
	)

	maxUpload := int64(cfg.MaxUploadMB) << 20
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, svc,
		api.WithAuth(auth.Config{Secret: cfg.AdminJWTSecret, Issuer: cfg.AdminJWTIssuer}),
		api.WithMaxUploadBytes(maxUpload),
		api.WithSessionCookie(cfg.SessionCookie),
		api.WithLogger(log.Named("api")),
	).Register(ctx, mux)
	site.NewHandler(svc,
		site.WithMaxUploadBytes(maxUpload),
		site.WithSessionCookie(cfg.SessionCookie),
		site.WithLogger(log.Named("site")),
	).Register(ctx, mux)

	return &application{
		svc:     svc,
		handler: mux,
		closers: []func() error{notifier.Close, store.Close},
	}, nil
}

// close releases the notifier and the store after the service stopped.
func (a *application) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	a, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.Error(ctx, "close failed", logger.Error(err))
		}
	}()

	if err := a.svc.Start(ctx); err != nil {
		return err
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
			logger.String("storage", cfg.StorageDriver),
			logger.String("notifier", cfg.Notifier))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := a.svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service stop failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

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

func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	stats := svc.GetStats(ctx)
	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateQueueCapacity(stats.QueueCapacity)
	metrics.UpdateWorkerCount(stats.Workers)
	metrics.UpdateVisitorCount(stats.Visitors)
}
