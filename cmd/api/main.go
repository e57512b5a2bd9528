package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"financetrack/internal/adapter/repo"
	"financetrack/internal/aggregate"
	"financetrack/internal/domain"
	"financetrack/internal/http/handlers"
	"financetrack/internal/http/httpapi"
	"financetrack/internal/infra"
	"financetrack/internal/infra/geoip"
	"financetrack/internal/ledger"
	"financetrack/internal/match"
	"financetrack/internal/metrics"
	"financetrack/internal/middleware"
	"financetrack/internal/notify"
	"financetrack/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	// Persistence backend.
	var (
		ledgerStore domain.LedgerStore
		assistQueue domain.AssistanceQueue
	)
	switch cfg.DataBackend {
	case infra.BackendPostgres:
		if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		ledgerStore = repo.NewLedgerRepository(runner)
		assistQueue = repo.NewQueueRepository(runner, cfg.AllowResubmit)
	default:
		ledgerStore = ledger.NewMemory()
		assistQueue = queue.NewMemory(queue.Options{AllowResubmit: cfg.AllowResubmit})
	}
	logger.Info().Str("backend", cfg.DataBackend).Msg("storage initialized")

	// Recipient notification, best effort.
	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPAddr != "" {
		notifier = notify.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom)
	}

	coordinator := match.New(assistQueue, ledgerStore, notifier, m, logger, match.Options{
		MaxClaimRetries: cfg.MaxClaimRetries,
		ClaimLease:      cfg.ClaimLease,
	})
	engine := aggregate.New(ledgerStore)

	// Optional GeoIP country lookup feeding locale detection.
	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := &handlers.App{
		Queue:       assistQueue,
		Ledger:      ledgerStore,
		Coordinator: coordinator,
		Engine:      engine,
		Metrics:     m,
		Logger:      logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Registry:        registry,
	})
	server := infra.NewHTTPServer(cfg, router)

	// Claim lease reaper: no entry stays claimed past its lease even if a
	// donation request dies before resolving.
	go func() {
		ticker := time.NewTicker(cfg.ClaimReapEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				released, err := assistQueue.ReapExpired(ctx)
				if err != nil {
					logger.Error().Err(err).Msg("claim reaper failed")
					continue
				}
				if released > 0 {
					m.LeaseExpired(released)
					logger.Warn().Int("released", released).Msg("expired claims released")
				}
			}
		}
	}()

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
