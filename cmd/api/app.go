package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vendora/edge/internal/api/handlers"
	"github.com/vendora/edge/internal/api/middleware"
	"github.com/vendora/edge/internal/config"
	"github.com/vendora/edge/internal/dashboard"
	"github.com/vendora/edge/internal/observability"
	"github.com/vendora/edge/internal/pagecache"
	"github.com/vendora/edge/internal/revalidate"
	"github.com/vendora/edge/internal/webhook"
	"github.com/vendora/edge/pkg/commerce"
	"github.com/vendora/edge/pkg/rescache"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg            *config.Config
	server         *http.Server
	memo           *webhook.Memo
	meterProvider  observability.MeterProviderShutdown
	tracerProvider *sdktrace.TracerProvider
	metrics        *observability.Metrics
}

// cachedPageRoutes maps GET routes served through the page cache to their
// invalidation tags. The tags mirror the webhook routing table, so product
// and order events purge these pages.
var cachedPageRoutes = map[string][]string{
	"/v1/catalog/products": {"products", "catalog"},
	"/v1/catalog/orders":   {"orders", "dashboard"},
}

// NewApp builds and wires all components. It does not start the HTTP server;
// call Run to start and block until shutdown or failure.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	var (
		meterProvider observability.MeterProviderShutdown
		promHandler   http.Handler
		metrics       *observability.Metrics
		err           error
	)

	if cfg.MetricsEnabled {
		meterProvider, promHandler, metrics, err = observability.NewMeterProvider(ctx, observability.MeterProviderConfig{})
		if err != nil {
			return nil, fmt.Errorf("create meter provider: %w", err)
		}
	} else {
		slog.Warn("metrics not enabled (METRICS_ENABLED=false)")
	}

	var tracerProvider *sdktrace.TracerProvider

	if cfg.OtelTracesExporter == "" {
		slog.Warn("tracing not enabled (OTEL_TRACES_EXPORTER empty or unset)")
	} else {
		tracerProvider, err = observability.NewTracerProvider(ctx, cfg.OtelTracesExporter, "")
		if err != nil {
			if shutErr := observability.ShutdownMeterProvider(context.Background(), meterProvider); shutErr != nil {
				slog.Error("shutdown meter provider after tracer provider error", "error", shutErr)
			}

			return nil, fmt.Errorf("create tracer provider: %w", err)
		}
	}

	// Install TraceContextHandler unconditionally so request_id (and trace_id/span_id when tracing is on) appear in logs.
	defaultHandler := slog.Default().Handler()
	slog.SetDefault(slog.New(observability.NewTraceContextHandler(defaultHandler)))

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
	}

	var (
		webhookMetrics observability.WebhookMetrics
		cacheMetrics   observability.CacheMetrics
		httpMetrics    observability.HTTPMetrics
	)
	if metrics != nil {
		webhookMetrics = metrics.Webhooks
		cacheMetrics = metrics.Cache
		httpMetrics = metrics.HTTP
	}

	pageCache, err := pagecache.New(cfg.PageCacheSize, cfg.PageCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}

	verifier, err := webhook.NewSignatureVerifier(cfg.WebhookSecret, cfg.WebhookVerifySignature)
	if err != nil {
		return nil, fmt.Errorf("create signature verifier: %w", err)
	}

	memo := webhook.NewMemo(cfg.WebhookMemoTTL)
	eventLog := webhook.NewEventLog(cfg.WebhookLogDir)
	revalidator := revalidate.NewPageCacheRevalidator(pageCache)
	processor := webhook.NewProcessor(memo, eventLog, revalidator, webhookMetrics)

	client := commerce.NewClient(commerce.ClientOptions{
		BaseURL:           cfg.CommerceBaseURL,
		ConsumerKey:       cfg.CommerceConsumerKey,
		ConsumerSecret:    cfg.CommerceConsumerSecret,
		RequestsPerSecond: cfg.CommerceRateLimit,
	})

	store := rescache.NewStore()
	contracts := dashboard.NewContracts(store, client, cfg.CacheStaleAfter, cacheMetrics)
	helpdesk := dashboard.NewHelpdesk(store, client, cfg.CacheStaleAfter, cacheMetrics)
	sellers := dashboard.NewSellers(store, client, cfg.CacheStaleAfter, cacheMetrics)
	invoices := dashboard.NewInvoices(store, client, cfg.CacheStaleAfter, cacheMetrics)
	services := dashboard.NewServices(store, client, cfg.CacheStaleAfter, cacheMetrics)

	deps := serverDeps{
		health:    handlers.NewHealthHandler(),
		webhooks:  handlers.NewWebhookHandler(verifier, processor, memo),
		contracts: handlers.NewContractsHandler(contracts),
		helpdesk:  handlers.NewHelpdeskHandler(helpdesk),
		sellers:   handlers.NewSellersHandler(sellers),
		invoices:  handlers.NewInvoicesHandler(invoices),
		services:  handlers.NewServicesHandler(services),
		catalog:   handlers.NewCatalogHandler(client),

		pageCache:    pageCache,
		promHandler:  promHandler,
		httpMetrics:  httpMetrics,
		cacheMetrics: cacheMetrics,

		tracerProvider: tracerProvider,
	}

	return &App{
		cfg:            cfg,
		server:         newHTTPServer(cfg, deps),
		memo:           memo,
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		metrics:        metrics,
	}, nil
}

type serverDeps struct {
	health    *handlers.HealthHandler
	webhooks  *handlers.WebhookHandler
	contracts *handlers.ContractsHandler
	helpdesk  *handlers.HelpdeskHandler
	sellers   *handlers.SellersHandler
	invoices  *handlers.InvoicesHandler
	services  *handlers.ServicesHandler
	catalog   *handlers.CatalogHandler

	pageCache    *pagecache.Cache
	promHandler  http.Handler
	httpMetrics  observability.HTTPMetrics
	cacheMetrics observability.CacheMetrics

	tracerProvider *sdktrace.TracerProvider
}

// newHTTPServer builds the HTTP server and muxes (no auth on /health, /metrics
// or the webhook route; API key on /v1/).
// Handler chain: RequestID -> Metrics -> otelhttp(Logging(mux)) so access logs
// get trace_id/span_id from context.
func newHTTPServer(cfg *config.Config, deps serverDeps) *http.Server {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", deps.health.Check)

	if deps.promHandler != nil {
		public.Handle("GET /metrics", deps.promHandler)
	}

	// The webhook route authenticates via signature, not API key. MaxBody
	// bounds what an unauthenticated caller can make us buffer.
	webhookMux := http.NewServeMux()
	webhookMux.HandleFunc("POST /webhooks/commerce", deps.webhooks.Receive)
	webhookMux.HandleFunc("GET /webhooks/commerce", deps.webhooks.Status)
	webhookHandler := middleware.MaxBody(cfg.MaxRequestBodyBytes)(webhookMux)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /v1/contracts", deps.contracts.List)
	protected.HandleFunc("GET /v1/contracts/expiring", deps.contracts.Expiring)
	protected.HandleFunc("POST /v1/contracts/{id}/validate", deps.contracts.Validate)
	protected.HandleFunc("POST /v1/contracts/{id}/invalidate", deps.contracts.Invalidate)

	protected.HandleFunc("GET /v1/tickets", deps.helpdesk.List)
	protected.HandleFunc("GET /v1/tickets/kpis", deps.helpdesk.KPIs)
	protected.HandleFunc("POST /v1/tickets/{id}/replies", deps.helpdesk.Reply)
	protected.HandleFunc("POST /v1/tickets/{id}/close", deps.helpdesk.Close)
	protected.HandleFunc("POST /v1/tickets/{id}/survey", deps.helpdesk.SubmitSurvey)

	protected.HandleFunc("GET /v1/sellers", deps.sellers.List)
	protected.HandleFunc("PUT /v1/sellers/{id}/status", deps.sellers.SetStatus)

	protected.HandleFunc("GET /v1/invoices", deps.invoices.List)
	protected.HandleFunc("GET /v1/invoices/kpis", deps.invoices.KPIs)
	protected.HandleFunc("POST /v1/invoices/{id}/pay", deps.invoices.MarkPaid)

	protected.HandleFunc("GET /v1/services", deps.services.List)
	protected.HandleFunc("PUT /v1/services", deps.services.Upsert)

	protected.HandleFunc("GET /v1/catalog/products", deps.catalog.ListProducts)
	protected.HandleFunc("GET /v1/catalog/products/{id}", deps.catalog.GetProduct)
	protected.HandleFunc("GET /v1/catalog/orders", deps.catalog.ListOrders)

	// PageCache sits inside Auth so unauthorized responses are never cached.
	var protectedHandler http.Handler = protected
	protectedHandler = middleware.PageCache(deps.pageCache, cachedPageRoutes, deps.cacheMetrics)(protectedHandler)
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	mux := http.NewServeMux()
	mux.Handle("/v1/", protectedHandler)
	mux.Handle("/webhooks/commerce", webhookHandler)
	mux.Handle("/", public)

	otelOpts := []otelhttp.Option{
		// Skip tracing and HTTP metrics for health checks to reduce noise.
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	}

	if deps.tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(deps.tracerProvider))
	}

	// Logging runs inside otelhttp so r.Context() has the span when we log (trace_id/span_id in access logs).
	inner := middleware.Logging(mux)
	handler := otelhttp.NewHandler(inner, "vendora-edge", otelOpts...)
	handler = middleware.Metrics(deps.httpMetrics)(handler)
	handler = middleware.RequestID(handler)

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 15 * time.Second
		idleTimeout  = 60 * time.Second
	)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and the memo sweeper, then blocks until ctx is
// cancelled (e.g. signal) or the server fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()

	go a.memo.Run(sweepCtx, a.cfg.WebhookSweepInterval)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		cancelSweep()

		return err
	case <-ctx.Done():
		cancelSweep()

		return nil
	}
}

// shutdownObservability shuts down tracer and meter providers. Logs secondary errors, returns the first.
func shutdownObservability(ctx context.Context, tracer *sdktrace.TracerProvider, meter observability.MeterProviderShutdown) error {
	var first error

	if err := observability.ShutdownTracerProvider(ctx, tracer); err != nil {
		first = err
	}

	if err := observability.ShutdownMeterProvider(ctx, meter); err != nil {
		if first == nil {
			first = err
		} else {
			slog.Error("shutdown meter provider", "error", err)
		}
	}

	return first
}

// Shutdown stops the server, then the observability providers. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) (err error) {
	defer func() {
		obsErr := shutdownObservability(ctx, a.tracerProvider, a.meterProvider)
		if err == nil {
			err = obsErr
		} else if obsErr != nil {
			slog.Error("shutdown observability", "error", obsErr)
		}
	}()

	if err = a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
