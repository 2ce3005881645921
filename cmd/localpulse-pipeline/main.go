// The pipeline binary performs one full processing run and exits; a scheduler
// (cron, systemd timer) owns the cadence
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"localpulse/internal/core/sentiment"
	"localpulse/internal/platform/config"
	"localpulse/internal/platform/logger"
	"localpulse/internal/platform/store"

	bizrepo "localpulse/internal/services/businesses/repo"
	bizsvc "localpulse/internal/services/businesses/service"
	insdomain "localpulse/internal/services/insights/domain"
	insrepo "localpulse/internal/services/insights/repo"
	inssvc "localpulse/internal/services/insights/service"
	pipesvc "localpulse/internal/services/pipeline/service"
	revrepo "localpulse/internal/services/reviews/repo"
	revsvc "localpulse/internal/services/reviews/service"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	var (
		migrateUp = flag.Bool("migrate", true, "apply pending schema migrations before running")
		cleanup   = flag.Bool("cleanup", false, "prune old trending keywords and anomaly reports after the run")
		keepDays  = flag.Int("keep-days", 0, "retention for -cleanup, 0 uses the default")
	)
	flag.Parse()

	root := config.New()
	pipeCfg := root.Prefix("CORE_PIPELINE_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storeCfg := store.FromEnv(root, "pipeline")
	if *migrateUp {
		if err := store.Migrate(storeCfg.PG.URL); err != nil {
			l.Panic().Err(err).Msg("migrations failed")
		}
	}

	st, err := store.Open(ctx, storeCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("store close failed")
		}
	}()
	if *migrateUp && st.CH != nil {
		if err := store.EnsureEventTables(ctx, st.CH); err != nil {
			l.Panic().Err(err).Msg("clickhouse bootstrap failed")
		}
	}

	analyzer, err := sentiment.New()
	if err != nil {
		l.Panic().Err(err).Msg("sentiment pack failed to load")
	}

	reviewRepo := revrepo.NewPG(st.PG)
	bizRepo := bizrepo.NewPG(st.PG)

	reviews := revsvc.New(reviewRepo, analyzer, st.CH, revsvc.Config{
		BatchLimit: pipeCfg.MayInt("ENRICH_LIMIT", 0),
		UsePattern: pipeCfg.MayBool("USE_PATTERN", false),
	})
	businesses := bizsvc.New(bizRepo, bizsvc.Config{
		RefreshLimit: pipeCfg.MayInt("REFRESH_LIMIT", 0),
	})
	insights := inssvc.New(
		st.PG,
		func(q store.RowQuerier) insdomain.StoragePort { return insrepo.NewPG(q) },
		reviewRepo,
		bizRepo,
		inssvc.Config{
			TrendingWindowDays: pipeCfg.MayInt("TRENDING_WINDOW_DAYS", 0),
			ScanLimit:          pipeCfg.MayInt("SCAN_LIMIT", 0),
			KeepDays:           pipeCfg.MayInt("KEEP_DAYS", 0),
		},
	)

	pipeline := pipesvc.New(reviews, businesses, insights, pipesvc.Config{})

	report, err := pipeline.Run(ctx)
	if err != nil {
		l.Error().Err(err).Str("run_id", report.RunID).Msg("pipeline run failed")
		os.Exit(1)
	}

	if *cleanup {
		if _, err := insights.Cleanup(ctx, *keepDays); err != nil {
			l.Error().Err(err).Msg("cleanup failed")
			os.Exit(1)
		}
	}
}
