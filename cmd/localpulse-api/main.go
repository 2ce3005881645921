package main

import (
	"context"
	"os/signal"
	"syscall"

	"localpulse/internal/core/sentiment"
	"localpulse/internal/httpapi"
	"localpulse/internal/platform/config"
	"localpulse/internal/platform/logger"
	"localpulse/internal/platform/store"

	bizrepo "localpulse/internal/services/businesses/repo"
	bizsvc "localpulse/internal/services/businesses/service"
	insdomain "localpulse/internal/services/insights/domain"
	insrepo "localpulse/internal/services/insights/repo"
	inssvc "localpulse/internal/services/insights/service"
	revrepo "localpulse/internal/services/reviews/repo"
	revsvc "localpulse/internal/services/reviews/service"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromEnv(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("store close failed")
		}
	}()
	if st.CH != nil {
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

	reviews := revsvc.New(reviewRepo, analyzer, st.CH, revsvc.Config{})
	businesses := bizsvc.New(bizRepo, bizsvc.Config{})
	insights := inssvc.New(
		st.PG,
		func(q store.RowQuerier) insdomain.StoragePort { return insrepo.NewPG(q) },
		reviewRepo,
		bizRepo,
		inssvc.Config{},
	)

	api := &httpapi.API{
		Businesses: businesses,
		Insights:   insights,
		Reviews:    reviews,
		Health:     st,
	}

	srv := httpapi.NewServer(apiCfg, httpapi.NewRouter(apiCfg, api))
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
