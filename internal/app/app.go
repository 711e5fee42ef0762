// Package app wires configuration, storage, domain services and the HTTP
// server into a runnable settlement engine.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nordmark-trading/settlement/internal/domain/pricing"
	"github.com/nordmark-trading/settlement/internal/domain/settlement"
	"github.com/nordmark-trading/settlement/internal/domain/shipping"
	"github.com/nordmark-trading/settlement/internal/domain/tax"
	"github.com/nordmark-trading/settlement/internal/domain/vat"
	"github.com/nordmark-trading/settlement/internal/handler"
	"github.com/nordmark-trading/settlement/internal/repository"
	"github.com/nordmark-trading/settlement/internal/vies"
	"github.com/nordmark-trading/settlement/pkg/health"
	"github.com/nordmark-trading/settlement/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	catalogRepo := repository.NewCatalogRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	creditRepo := repository.NewCreditRepository(pool)

	// Pure domain components.
	pricer := pricing.NewResolver(pricing.DefaultLadder(), cfg.GlobalMOQ)
	taxes := tax.NewCalculator(tax.DefaultTable())
	zones, err := shipping.NewResolver(shipping.DefaultZones())
	if err != nil {
		return errors.Wrap(err, "build shipping zones")
	}

	// VAT validator with its optional collaborators.
	registry, err := loadRegistryFilter(cfg.RegistryFilterPath)
	if err != nil {
		return errors.Wrap(err, "load registry filter")
	}
	if registry != nil {
		lg.Info("Registry filter loaded", zap.String("path", cfg.RegistryFilterPath))
	}

	var confirm vat.ConfirmationService
	if cfg.VIES.BaseURL != "" {
		confirm = vies.NewClient(cfg.VIES.BaseURL, cfg.VIES.Timeout)
		lg.Info("Online VAT confirmation enabled", zap.String("base_url", cfg.VIES.BaseURL))
	}
	validator := vat.NewValidator(confirm, registry, cfg.VIES.Timeout)

	// Settlement orchestrator.
	settlements := settlement.NewService(
		catalogRepo,
		customerRepo,
		pricer,
		taxes,
		zones,
		creditRepo,
		validator,
		settlement.Config{
			SellerCountry:      cfg.SellerCountry,
			Currency:           cfg.Currency,
			CreditMinimumOrder: cfg.CreditMinimum(),
		},
	)

	// HTTP handlers.
	h := handler.NewHandler(settlements, validator)
	api := otelhttp.NewHandler(h.Routes(), "settlement-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// loadRegistryFilter reads a bloom filter previously written by the
// registry-ingest tool. An empty path disables the registry hint.
func loadRegistryFilter(path string) (*bloom.BloomFilter, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open filter file")
	}
	defer func() { _ = f.Close() }()

	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(f); err != nil {
		return nil, errors.Wrap(err, "read filter")
	}
	return filter, nil
}
