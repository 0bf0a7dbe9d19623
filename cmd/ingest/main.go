// Command ingest runs the ingestion pipeline once from the command line:
// either every file in the intake directory, or one platform's file. It can
// also create a tenant, which is otherwise an out-of-band admin step.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/richarq/admetrics/internal/config"
	"github.com/richarq/admetrics/internal/db"
	"github.com/richarq/admetrics/internal/domain"
	"github.com/richarq/admetrics/internal/ingestion"
	"github.com/richarq/admetrics/internal/repository"
)

func main() {
	var (
		tenantSlug   = flag.String("tenant", "", "tenant slug (required)")
		platform     = flag.String("platform", "", "ingest only this platform (google|meta|tiktok); default all files")
		dataDir      = flag.String("data-dir", "", "override intake directory")
		createTenant = flag.String("create-tenant", "", "create a tenant with this display name for -tenant slug, then exit")
		showStats    = flag.Bool("stats", false, "print tenant stats instead of ingesting")
	)
	flag.Parse()

	if *tenantSlug == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	tenantRepo := repository.NewTenantRepository(conn.Pool)

	if *createTenant != "" {
		tenant, err := tenantRepo.Create(ctx, domain.NewTenant(*createTenant, *tenantSlug))
		if err != nil {
			logger.Fatal("failed to create tenant", zap.Error(err))
		}
		fmt.Printf("created tenant %s (%s)\n", tenant.Slug, tenant.ID)
		return
	}

	service := ingestion.NewService(
		tenantRepo,
		repository.NewCampaignRepository(conn.Pool),
		repository.NewCampaignMetricRepository(conn.Pool),
		repository.NewIngestionLogRepository(conn.Pool),
		cfg.DataDir,
		logger,
	)

	var payload any
	switch {
	case *showStats:
		payload, err = service.Stats(ctx, *tenantSlug)
	case *platform != "":
		payload, err = service.IngestPlatform(ctx, *platform, *tenantSlug)
	default:
		payload, err = service.IngestAll(ctx, *tenantSlug)
	}
	if err != nil {
		logger.Fatal("ingestion failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		logger.Fatal("failed to render summary", zap.Error(err))
	}
	fmt.Println(string(out))
}
