package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"storefront/internal/adapter/repo"
	"storefront/internal/audit"
	"storefront/internal/bundle"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/entitlement"
	"storefront/internal/gateway"
	"storefront/internal/http/handlers"
	httpapi "storefront/internal/http/httpapi"
	"storefront/internal/infra"
	"storefront/internal/infra/geoip"
	"storefront/internal/ledger"
	mw "storefront/internal/middleware"
	"storefront/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	// A malformed catalog is a deployment error; refuse to start.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("failed to load catalog")
	}
	logger.Info().Int("templates", cat.Len()).Msg("catalog loaded")

	subjects := repo.NewSubjectRepository(runner)
	sessions := repo.NewSessionRepository(runner)
	deliveries := ledger.NewLedger(runner)
	evaluator := entitlement.NewEvaluator(cat, subjects)

	store, err := storage.NewFileStore(cfg.BundleStoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure bundle storage")
	}
	bundles := bundle.NewService(store, cfg.BundleBaseURL, logger)

	gw, err := gateway.NewClient(gateway.Options{
		APIKey:  cfg.GatewayAPIKey,
		BaseURL: cfg.GatewayBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure payment gateway")
	}

	orchestrator, err := checkout.NewOrchestrator(checkout.Options{
		Sessions:      sessions,
		Identity:      subjects,
		Ledger:        deliveries,
		Evaluator:     evaluator,
		Gateway:       gw,
		Audit:         audit.Select(cfg.AuditFeedURL, logger),
		Logger:        logger,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
		AppendRetries: cfg.LedgerAppendRetries,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire checkout")
	}

	var countries mw.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countries = resolver.CountryCode
	}

	app := &handlers.App{
		Logger:        logger,
		SQL:           runner,
		Catalog:       cat,
		Evaluator:     evaluator,
		Orchestrator:  orchestrator,
		Ledger:        deliveries,
		Bundles:       bundles,
		WebhookSecret: cfg.GatewayWebhookSecret,
	}
	router := httpapi.NewRouter(app, cfg, countries)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
