package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"influencer-match-engine/internal/matching"
	"influencer-match-engine/internal/notify"
	"influencer-match-engine/internal/observability"
	"influencer-match-engine/internal/payments"
	"influencer-match-engine/internal/scoring"
	"influencer-match-engine/internal/storage"
)

// Finder is the recommendation surface the handlers call.
type Finder interface {
	FindMatchingCampaigns(ctx context.Context, influencerID string, minScore int) ([]scoring.MatchResult, error)
	FindMatchingInfluencers(ctx context.Context, campaignID string, minScore int) ([]scoring.MatchResult, error)
}

// Store is the subset of storage the handlers use directly.
type Store interface {
	GetInfluencer(ctx context.Context, id string) (scoring.InfluencerProfile, error)
	GetCampaign(ctx context.Context, id string) (scoring.CampaignDescriptor, error)
	GetUserEmail(ctx context.Context, id string) (string, error)
	CreateApplication(ctx context.Context, a storage.Application) error
	CreateInvitation(ctx context.Context, inv storage.Invitation) error
	CreateNotification(ctx context.Context, n storage.Notification) error
	CreatePayout(ctx context.Context, p payments.Payout) error
	UpdatePayoutStatus(ctx context.Context, id string, next payments.Status) (payments.Payout, error)
}

type Handler struct {
	finder     Finder
	store      Store
	cache      *storage.CampaignCache
	mailer     *notify.Mailer // nil when email is disabled
	minScore   int
	feePercent int
}

func NewHandler(finder Finder, store Store, cache *storage.CampaignCache, mailer *notify.Mailer, minScore, feePercent int) *Handler {
	if minScore <= 0 {
		minScore = matching.DefaultMinScore
	}
	return &Handler{finder: finder, store: store, cache: cache, mailer: mailer, minScore: minScore, feePercent: feePercent}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// MatchingCampaigns serves GET /v1/influencers/{influencerID}/matches.
func (h *Handler) MatchingCampaigns(w http.ResponseWriter, r *http.Request) {
	h.serveMatches(w, r, func(ctx context.Context, minScore int) ([]scoring.MatchResult, error) {
		return h.finder.FindMatchingCampaigns(ctx, chi.URLParam(r, "influencerID"), minScore)
	})
}

// MatchingInfluencers serves GET /v1/campaigns/{campaignID}/matches.
func (h *Handler) MatchingInfluencers(w http.ResponseWriter, r *http.Request) {
	h.serveMatches(w, r, func(ctx context.Context, minScore int) ([]scoring.MatchResult, error) {
		return h.finder.FindMatchingInfluencers(ctx, chi.URLParam(r, "campaignID"), minScore)
	})
}

func (h *Handler) serveMatches(w http.ResponseWriter, r *http.Request, find func(context.Context, int) ([]scoring.MatchResult, error)) {
	minScore := h.minScore
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 100 {
			writeError(w, http.StatusBadRequest, "min_score must be an integer in [0,100]")
			return
		}
		minScore = v
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	results, err := find(r.Context(), minScore)
	if err != nil {
		var nf *matching.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, nf.Error())
			return
		}
		log.Error().Err(err).Msg("match lookup failed")
		writeError(w, http.StatusInternalServerError, "match lookup failed")
		return
	}
	if len(results) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	// limit is applied after the full filtered/sorted list is built
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	writeJSON(w, http.StatusOK, results)
}

// ActiveCampaigns serves GET /v1/campaigns from the snapshot cache.
func (h *Handler) ActiveCampaigns(w http.ResponseWriter, _ *http.Request) {
	campaigns := h.cache.ActiveCampaigns()
	if campaigns == nil {
		campaigns = []scoring.CampaignDescriptor{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

type applicationRequest struct {
	InfluencerID string `json:"influencerId"`
	Message      string `json:"message"`
}

// SubmitApplication serves POST /v1/campaigns/{campaignID}/applications.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InfluencerID == "" {
		writeError(w, http.StatusBadRequest, "influencerId is required")
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetCampaign(ctx, campaignID); err != nil {
		h.writeStoreError(w, err, "campaign")
		return
	}
	if _, err := h.store.GetInfluencer(ctx, req.InfluencerID); err != nil {
		h.writeStoreError(w, err, "influencer")
		return
	}

	app := storage.Application{
		ID:           uuid.NewString(),
		CampaignID:   campaignID,
		InfluencerID: req.InfluencerID,
		Message:      req.Message,
		Status:       "submitted",
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "application already submitted")
			return
		}
		log.Error().Err(err).Msg("create application")
		writeError(w, http.StatusInternalServerError, "could not create application")
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

type invitationRequest struct {
	InfluencerID string `json:"influencerId"`
}

// SendInvitation serves POST /v1/campaigns/{campaignID}/invitations. The
// invitation and notification rows are the source of truth; the email is
// best-effort and never fails the request.
func (h *Handler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")
	var req invitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InfluencerID == "" {
		writeError(w, http.StatusBadRequest, "influencerId is required")
		return
	}

	ctx := r.Context()
	campaign, err := h.store.GetCampaign(ctx, campaignID)
	if err != nil {
		h.writeStoreError(w, err, "campaign")
		return
	}
	if _, err := h.store.GetInfluencer(ctx, req.InfluencerID); err != nil {
		h.writeStoreError(w, err, "influencer")
		return
	}

	now := time.Now().UTC()
	inv := storage.Invitation{
		ID:           uuid.NewString(),
		CampaignID:   campaignID,
		InfluencerID: req.InfluencerID,
		Status:       "sent",
		CreatedAt:    now,
	}
	if err := h.store.CreateInvitation(ctx, inv); err != nil {
		log.Error().Err(err).Msg("create invitation")
		writeError(w, http.StatusInternalServerError, "could not create invitation")
		return
	}

	n := storage.Notification{
		ID:          uuid.NewString(),
		RecipientID: req.InfluencerID,
		Type:        "invitation",
		Payload:     map[string]string{"campaignId": campaignID, "campaignTitle": campaign.Title},
		CreatedAt:   now,
	}
	if err := h.store.CreateNotification(ctx, n); err != nil {
		log.Error().Err(err).Msg("create notification")
	}

	if h.mailer != nil {
		if email, err := h.store.GetUserEmail(ctx, req.InfluencerID); err == nil {
			if err := h.mailer.SendInvitation(ctx, email, campaign.Title); err != nil {
				log.Error().Err(err).Str("influencer", req.InfluencerID).Msg("invitation email")
			}
		}
	}

	observability.InvitationsSent.Inc()
	writeJSON(w, http.StatusCreated, inv)
}

type payoutRequest struct {
	CampaignID   string `json:"campaignId"`
	InfluencerID string `json:"influencerId"`
	AmountCents  int64  `json:"amountCents"`
}

// CreatePayout serves POST /v1/payouts.
func (h *Handler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	var req payoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CampaignID == "" || req.InfluencerID == "" {
		writeError(w, http.StatusBadRequest, "campaignId and influencerId are required")
		return
	}
	p, err := payments.New(req.CampaignID, req.InfluencerID, req.AmountCents, h.feePercent)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.CreatePayout(r.Context(), p); err != nil {
		log.Error().Err(err).Msg("create payout")
		writeError(w, http.StatusInternalServerError, "could not create payout")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type payoutStatusRequest struct {
	Status payments.Status `json:"status"`
}

// UpdatePayoutStatus serves POST /v1/payouts/{payoutID}/status.
func (h *Handler) UpdatePayoutStatus(w http.ResponseWriter, r *http.Request) {
	var req payoutStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	switch req.Status {
	case payments.StatusPending, payments.StatusProcessing, payments.StatusCompleted, payments.StatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "unknown payout status")
		return
	}

	p, err := h.store.UpdatePayoutStatus(r.Context(), chi.URLParam(r, "payoutID"), req.Status)
	if err != nil {
		var te *payments.TransitionError
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &te):
			writeError(w, http.StatusConflict, te.Error())
		default:
			log.Error().Err(err).Msg("update payout status")
			writeError(w, http.StatusInternalServerError, "could not update payout")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, kind string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Error().Err(err).Str("kind", kind).Msg("store lookup")
	writeError(w, http.StatusInternalServerError, "lookup failed")
}
