package matching

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"influencer-match-engine/internal/observability"
	"influencer-match-engine/internal/scoring"
	"influencer-match-engine/internal/storage"
)

// DefaultMinScore is the recommendation threshold used when the caller does
// not pick one.
const DefaultMinScore = 60

// Store is the read access the finder needs. *storage.Store satisfies it;
// tests inject fakes.
type Store interface {
	GetInfluencer(ctx context.Context, id string) (scoring.InfluencerProfile, error)
	GetCampaign(ctx context.Context, id string) (scoring.CampaignDescriptor, error)
	LoadActiveCampaigns(ctx context.Context) ([]scoring.CampaignDescriptor, error)
	LoadInfluencers(ctx context.Context) ([]scoring.InfluencerProfile, error)
	AppliedCampaignIDs(ctx context.Context, influencerID string) (map[string]struct{}, error)
	AppliedInfluencerIDs(ctx context.Context, campaignID string) (map[string]struct{}, error)
}

// Finder ranks campaign/influencer pairings by match score.
//
// Candidate-pool and exclusion-set fetch failures are swallowed into an
// empty result on purpose: recommendations are supplementary content and a
// backend hiccup must degrade to "nothing to show", not break the page.
type Finder struct {
	store Store
}

func NewFinder(store Store) *Finder { return &Finder{store: store} }

// FindMatchingCampaigns scores the given influencer against every active
// campaign they have not already applied to and returns the pairs at or
// above minScore, best first.
func (f *Finder) FindMatchingCampaigns(ctx context.Context, influencerID string, minScore int) ([]scoring.MatchResult, error) {
	inf, err := f.store.GetInfluencer(ctx, influencerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Kind: "influencer", ID: influencerID}
		}
		return nil, err
	}

	campaigns, err := f.store.LoadActiveCampaigns(ctx)
	if err != nil {
		observability.FetchErrorsSwallowed.WithLabelValues("candidates").Inc()
		log.Error().Err(err).Str("influencer", influencerID).Msg("load campaigns; returning no recommendations")
		return []scoring.MatchResult{}, nil
	}

	applied, err := f.store.AppliedCampaignIDs(ctx, influencerID)
	if err != nil {
		observability.FetchErrorsSwallowed.WithLabelValues("exclusions").Inc()
		log.Error().Err(err).Str("influencer", influencerID).Msg("load applications; returning no recommendations")
		return []scoring.MatchResult{}, nil
	}

	results := make([]scoring.MatchResult, 0, len(campaigns))
	for _, c := range campaigns {
		if _, ok := applied[c.ID]; ok {
			continue
		}
		if r := scoring.Score(inf, c); r.MatchScore >= minScore {
			results = append(results, r)
		}
	}
	sortResults(results, func(r scoring.MatchResult) string { return r.CampaignID })
	observability.MatchesComputed.Add(float64(len(results)))
	return results, nil
}

// FindMatchingInfluencers is the campaign-centric mirror: scores every
// influencer who has not already applied to the given campaign.
func (f *Finder) FindMatchingInfluencers(ctx context.Context, campaignID string, minScore int) ([]scoring.MatchResult, error) {
	c, err := f.store.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Kind: "campaign", ID: campaignID}
		}
		return nil, err
	}

	influencers, err := f.store.LoadInfluencers(ctx)
	if err != nil {
		observability.FetchErrorsSwallowed.WithLabelValues("candidates").Inc()
		log.Error().Err(err).Str("campaign", campaignID).Msg("load influencers; returning no recommendations")
		return []scoring.MatchResult{}, nil
	}

	applied, err := f.store.AppliedInfluencerIDs(ctx, campaignID)
	if err != nil {
		observability.FetchErrorsSwallowed.WithLabelValues("exclusions").Inc()
		log.Error().Err(err).Str("campaign", campaignID).Msg("load applications; returning no recommendations")
		return []scoring.MatchResult{}, nil
	}

	results := make([]scoring.MatchResult, 0, len(influencers))
	for _, inf := range influencers {
		if _, ok := applied[inf.ID]; ok {
			continue
		}
		if r := scoring.Score(inf, c); r.MatchScore >= minScore {
			results = append(results, r)
		}
	}
	sortResults(results, func(r scoring.MatchResult) string { return r.InfluencerID })
	observability.MatchesComputed.Add(float64(len(results)))
	return results, nil
}

// sortResults orders by score descending, then ascending entity ID so equal
// scores rank deterministically regardless of query return order.
func sortResults(rs []scoring.MatchResult, id func(scoring.MatchResult) string) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].MatchScore != rs[j].MatchScore {
			return rs[i].MatchScore > rs[j].MatchScore
		}
		return id(rs[i]) < id(rs[j])
	})
}
