package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-match-engine/internal/scoring"
	"influencer-match-engine/internal/storage"
)

type fakeStore struct {
	influencers map[string]scoring.InfluencerProfile
	campaigns   []scoring.CampaignDescriptor

	appliedByInfluencer map[string]map[string]struct{}
	appliedByCampaign   map[string]map[string]struct{}

	campaignsErr   error
	influencersErr error
	appliedErr     error
}

func (f *fakeStore) GetInfluencer(_ context.Context, id string) (scoring.InfluencerProfile, error) {
	inf, ok := f.influencers[id]
	if !ok {
		return scoring.InfluencerProfile{}, fmt.Errorf("influencer %s: %w", id, storage.ErrNotFound)
	}
	return inf, nil
}

func (f *fakeStore) GetCampaign(_ context.Context, id string) (scoring.CampaignDescriptor, error) {
	for _, c := range f.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return scoring.CampaignDescriptor{}, fmt.Errorf("campaign %s: %w", id, storage.ErrNotFound)
}

func (f *fakeStore) LoadActiveCampaigns(context.Context) ([]scoring.CampaignDescriptor, error) {
	if f.campaignsErr != nil {
		return nil, f.campaignsErr
	}
	var out []scoring.CampaignDescriptor
	for _, c := range f.campaigns {
		if c.Status == "active" {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) LoadInfluencers(context.Context) ([]scoring.InfluencerProfile, error) {
	if f.influencersErr != nil {
		return nil, f.influencersErr
	}
	var out []scoring.InfluencerProfile
	for _, inf := range f.influencers {
		out = append(out, inf)
	}
	return out, nil
}

func (f *fakeStore) AppliedCampaignIDs(_ context.Context, influencerID string) (map[string]struct{}, error) {
	if f.appliedErr != nil {
		return nil, f.appliedErr
	}
	return f.appliedByInfluencer[influencerID], nil
}

func (f *fakeStore) AppliedInfluencerIDs(_ context.Context, campaignID string) (map[string]struct{}, error) {
	if f.appliedErr != nil {
		return nil, f.appliedErr
	}
	return f.appliedByCampaign[campaignID], nil
}

func strPtr(s string) *string   { return &s }
func i64Ptr(v int64) *int64     { return &v }
func f64Ptr(v float64) *float64 { return &v }

// fashionInfluencer scores 76 against fashionCampaign (see scoring tests).
func fashionInfluencer(id string) scoring.InfluencerProfile {
	return scoring.InfluencerProfile{
		ID:             id,
		Niches:         []string{"Fashion"},
		Location:       strPtr("NYC"),
		AudienceSize:   i64Ptr(2000),
		EngagementRate: f64Ptr(0.03),
	}
}

func fashionCampaign(id, title string) scoring.CampaignDescriptor {
	return scoring.CampaignDescriptor{
		ID:                 id,
		Title:              title,
		Status:             "active",
		TargetNiches:       []string{"Fashion", "Beauty"},
		TargetLocation:     strPtr("NYC"),
		TargetAudienceSize: &scoring.AudienceRange{Min: i64Ptr(1000), Max: i64Ptr(5000)},
	}
}

func TestFindMatchingCampaigns_ExcludesApplied(t *testing.T) {
	st := &fakeStore{
		influencers: map[string]scoring.InfluencerProfile{"inf-1": fashionInfluencer("inf-1")},
		campaigns: []scoring.CampaignDescriptor{
			fashionCampaign("cmp-1", "Spring"),
			fashionCampaign("cmp-2", "Summer"),
		},
		appliedByInfluencer: map[string]map[string]struct{}{
			"inf-1": {"cmp-1": {}},
		},
	}

	got, err := NewFinder(st).FindMatchingCampaigns(context.Background(), "inf-1", DefaultMinScore)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cmp-2", got[0].CampaignID)
	assert.Equal(t, 76, got[0].MatchScore)
}

func TestFindMatchingCampaigns_UnknownInfluencer(t *testing.T) {
	st := &fakeStore{influencers: map[string]scoring.InfluencerProfile{}}

	got, err := NewFinder(st).FindMatchingCampaigns(context.Background(), "ghost", DefaultMinScore)
	require.Error(t, err)
	assert.Nil(t, got)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "influencer", nf.Kind)
	assert.Equal(t, "ghost", nf.ID)
}

func TestFindMatchingCampaigns_FetchErrorsSwallowed(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*fakeStore)
	}{
		{"campaign load fails", func(s *fakeStore) { s.campaignsErr = errors.New("db down") }},
		{"application load fails", func(s *fakeStore) { s.appliedErr = errors.New("db down") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{
				influencers: map[string]scoring.InfluencerProfile{"inf-1": fashionInfluencer("inf-1")},
				campaigns:   []scoring.CampaignDescriptor{fashionCampaign("cmp-1", "Spring")},
			}
			tt.mod(st)

			got, err := NewFinder(st).FindMatchingCampaigns(context.Background(), "inf-1", DefaultMinScore)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestFindMatchingCampaigns_ThresholdMonotonic(t *testing.T) {
	st := &fakeStore{
		influencers: map[string]scoring.InfluencerProfile{"inf-1": fashionInfluencer("inf-1")},
		campaigns: []scoring.CampaignDescriptor{
			fashionCampaign("cmp-1", "Spring"), // 76
			{ID: "cmp-2", Title: "Gaming", Status: "active", TargetNiches: []string{"Gaming"}}, // low
			{ID: "cmp-3", Title: "Open", Status: "active", TargetNiches: []string{"Fashion"},
				TargetLocation: strPtr("NYC")}, // high
		},
	}
	finder := NewFinder(st)

	var prev int
	first := true
	for _, min := range []int{0, 30, 60, 80, 101} {
		got, err := finder.FindMatchingCampaigns(context.Background(), "inf-1", min)
		require.NoError(t, err)
		if !first {
			assert.LessOrEqual(t, len(got), prev, "raising min_score must not grow the result")
		}
		prev, first = len(got), false
	}
}

func TestFindMatchingCampaigns_Ordering(t *testing.T) {
	// cmp-b and cmp-a tie exactly; cmp-top scores higher.
	st := &fakeStore{
		influencers: map[string]scoring.InfluencerProfile{"inf-1": fashionInfluencer("inf-1")},
		campaigns: []scoring.CampaignDescriptor{
			fashionCampaign("cmp-b", "Tie B"),
			fashionCampaign("cmp-a", "Tie A"),
			{ID: "cmp-top", Title: "Perfect", Status: "active", TargetNiches: []string{"Fashion"},
				TargetLocation:     strPtr("nyc"),
				TargetAudienceSize: &scoring.AudienceRange{Min: i64Ptr(1000), Max: i64Ptr(5000)}},
		},
	}

	got, err := NewFinder(st).FindMatchingCampaigns(context.Background(), "inf-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "cmp-top", got[0].CampaignID)
	assert.Equal(t, "cmp-a", got[1].CampaignID)
	assert.Equal(t, "cmp-b", got[2].CampaignID)
	assert.Equal(t, got[1].MatchScore, got[2].MatchScore)
}

func TestFindMatchingInfluencers(t *testing.T) {
	st := &fakeStore{
		influencers: map[string]scoring.InfluencerProfile{
			"inf-1": fashionInfluencer("inf-1"),
			"inf-2": fashionInfluencer("inf-2"),
			"inf-3": {ID: "inf-3", Niches: []string{"Gaming"}},
		},
		campaigns: []scoring.CampaignDescriptor{fashionCampaign("cmp-1", "Spring")},
		appliedByCampaign: map[string]map[string]struct{}{
			"cmp-1": {"inf-2": {}},
		},
	}

	got, err := NewFinder(st).FindMatchingInfluencers(context.Background(), "cmp-1", DefaultMinScore)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inf-1", got[0].InfluencerID)
}

func TestFindMatchingInfluencers_UnknownCampaign(t *testing.T) {
	st := &fakeStore{}

	_, err := NewFinder(st).FindMatchingInfluencers(context.Background(), "ghost", DefaultMinScore)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "campaign", nf.Kind)
}
