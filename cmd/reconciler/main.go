// The reconciler sweeps checkout sessions stuck in pending, typically
// because a gateway webhook was lost, and resolves them by polling the
// gateway's status API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"storefront/internal/adapter/repo"
	"storefront/internal/audit"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/entitlement"
	"storefront/internal/gateway"
	"storefront/internal/infra"
	"storefront/internal/ledger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: db connection failed")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: failed to load catalog")
	}

	subjects := repo.NewSubjectRepository(runner)
	sessions := repo.NewSessionRepository(runner)
	deliveries := ledger.NewLedger(runner)

	gw, err := gateway.NewClient(gateway.Options{
		APIKey:  cfg.GatewayAPIKey,
		BaseURL: cfg.GatewayBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: failed to configure payment gateway")
	}

	orchestrator, err := checkout.NewOrchestrator(checkout.Options{
		Sessions:      sessions,
		Identity:      subjects,
		Ledger:        deliveries,
		Evaluator:     entitlement.NewEvaluator(cat, subjects),
		Gateway:       gw,
		Audit:         audit.Select(cfg.AuditFeedURL, logger),
		Logger:        logger,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
		AppendRetries: cfg.LedgerAppendRetries,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: failed to wire checkout")
	}

	logger.Info().
		Dur("interval", cfg.ReconcileInterval).
		Dur("age", cfg.ReconcileAge).
		Int("batch_size", cfg.ReconcileBatchSize).
		Msg("reconciler: started")

	if err := run(ctx, orchestrator, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("reconciler: stopped with error")
	}
	logger.Info().Msg("reconciler: stopped")
}

func run(ctx context.Context, orchestrator *checkout.Orchestrator, cfg *infra.Config, logger infra.Logger) error {
	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		resolved, err := orchestrator.ReconcilePending(ctx, cfg.ReconcileAge, cfg.ReconcileBatchSize)
		if err != nil {
			logger.Error().Err(err).Msg("reconciler: sweep failed")
		} else if resolved > 0 {
			logger.Info().Int("resolved", resolved).Msg("reconciler: sweep resolved sessions")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
