package tests

import (
	"testing"

	"influencer-match-engine/internal/scoring"
)

func BenchmarkScore(b *testing.B) {
	location := "NYC"
	audience := int64(2000)
	rate := 0.03
	min, max := int64(1000), int64(5000)

	inf := scoring.InfluencerProfile{
		ID:             "inf-1",
		Niches:         []string{"Fashion", "Beauty", "Lifestyle"},
		Location:       &location,
		AudienceSize:   &audience,
		EngagementRate: &rate,
	}
	c := scoring.CampaignDescriptor{
		ID:                 "cmp-1",
		Title:              "Spring Collection",
		TargetNiches:       []string{"Fashion", "Beauty"},
		TargetLocation:     &location,
		TargetAudienceSize: &scoring.AudienceRange{Min: &min, Max: &max},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = scoring.Score(inf, c)
	}
}
