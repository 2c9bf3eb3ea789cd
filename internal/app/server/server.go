package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"influencer-match-engine/internal/api"
	"influencer-match-engine/internal/config"
	"influencer-match-engine/internal/listener"
	"influencer-match-engine/internal/matching"
	"influencer-match-engine/internal/notify"
	"influencer-match-engine/internal/storage"
)

func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	store, err := storage.New(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	// Campaign snapshot cache, warmed before serving
	campaignCache := storage.NewCampaignCache()
	campaigns, err := store.LoadActiveCampaigns(rootCtx)
	if err != nil {
		log.Fatal().Err(err).Msg("initial campaign load")
	}
	campaignCache.Update(campaigns)

	// Matching
	finder := matching.NewFinder(store)

	// Email (optional)
	var mailer *notify.Mailer
	if cfg.Email.Enabled {
		mailer, err = notify.NewMailer(rootCtx, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			log.Fatal().Err(err).Msg("init mailer")
		}
	}

	// HTTP
	h := api.NewHandler(finder, store, campaignCache, mailer, cfg.Matching.MinScore, cfg.Payments.FeePercent)
	r := api.Router(h)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listener (LISTEN/NOTIFY)
	go listener.ListenAndRefresh(rootCtx, store, campaignCache, cfg.Listener.Channel, cfg.Backoff())

	// Server goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	// Wait for signal
	waitForSignal()
	log.Info().Msg("shutdown...")

	// Graceful shutdown
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = srv.Shutdown(shCtx)
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
