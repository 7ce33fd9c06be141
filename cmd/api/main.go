package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/PratikDhanave/crm-sync-service/internal/config"
	"github.com/PratikDhanave/crm-sync-service/internal/domain"
	"github.com/PratikDhanave/crm-sync-service/internal/httpserver"
	"github.com/PratikDhanave/crm-sync-service/internal/hubspot"
	"github.com/PratikDhanave/crm-sync-service/internal/logger"
	"github.com/PratikDhanave/crm-sync-service/internal/mapping"
	"github.com/PratikDhanave/crm-sync-service/internal/store"
	"github.com/PratikDhanave/crm-sync-service/internal/syncer"
	"github.com/PratikDhanave/crm-sync-service/internal/telemetry"
)

// main boots the service: config → logger → mappings → HubSpot client →
// optional audit DB → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Error("service stopped", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	mappings, err := mapping.Load(cfg.MappingsFile)
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics()

	client, err := hubspot.NewClient(hubspot.Config{
		BaseURL: cfg.HubSpot.BaseURL,
		Token:   cfg.HubSpot.Token,
		Timeout: cfg.HubSpot.Timeout,
	}, zl.Named("hubspot"), hubspot.WithObserver(metrics))
	if err != nil {
		return err
	}

	deps := httpserver.Deps{
		Metrics: metrics.Handler(),
		Logger:  zl,
	}
	recorders := []syncer.Recorder{metrics}

	// The audit log is optional; without DB_URL outcomes are only logged and counted.
	if cfg.DBURL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.DBURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		recorders = append(recorders, db)
		deps.Counter = db
		deps.DB = db
	}

	deps.Processor = syncer.New(client, syncer.Config{
		Mappings:               mappings,
		LeadDiscriminatorField: cfg.LeadDiscriminatorField,
		Normalizer:             domain.NewNormalizer(cfg.Domain.CompoundSuffixes, cfg.Domain.PublicSuffix),
	}, zl.Named("sync"), recorders...)

	router := httpserver.NewRouter(cfg, deps)

	addr := ":" + cfg.Port
	zl.Info("server started", zap.String("addr", addr), zap.Bool("audit_log", cfg.DBURL != ""))
	return router.Run(addr)
}
