package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"influencer-match-engine/internal/observability"
)

func Router(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/v1/campaigns", h.ActiveCampaigns)
	r.Get("/v1/campaigns/{campaignID}/matches", h.MatchingInfluencers)
	r.Post("/v1/campaigns/{campaignID}/applications", h.SubmitApplication)
	r.Post("/v1/campaigns/{campaignID}/invitations", h.SendInvitation)
	r.Get("/v1/influencers/{influencerID}/matches", h.MatchingCampaigns)
	r.Post("/v1/payouts", h.CreatePayout)
	r.Post("/v1/payouts/{payoutID}/status", h.UpdatePayoutStatus)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	return r
}
