package scoring

import (
	"math"
	"strings"
)

// Sub-score weights. They sum to 1, so the weighted sum stays in [0,1].
const (
	nicheWeight      = 0.40
	locationWeight   = 0.30
	audienceWeight   = 0.20
	engagementWeight = 0.10
)

// neutral is used when a dimension has too little data to judge either way.
const neutral = 0.5

// engagementCeiling: a 5% engagement rate earns the full sub-score.
const engagementCeiling = 0.05

// Score computes the weighted compatibility of one influencer and one
// campaign. Pure and deterministic; absent optional fields fall back to
// neutral defaults, never to an error.
func Score(inf InfluencerProfile, c CampaignDescriptor) MatchResult {
	inf = normalizeInfluencer(inf)
	c = normalizeCampaign(c)

	d := MatchDetails{
		NicheScore:      nicheScore(c.TargetNiches, inf.Niches),
		LocationScore:   locationScore(c.TargetLocation, inf.Location),
		AudienceScore:   audienceScore(c.TargetAudienceSize, inf.AudienceSize),
		EngagementScore: engagementScore(inf.EngagementRate, inf.Metrics),
	}

	weighted := nicheWeight*d.NicheScore +
		locationWeight*d.LocationScore +
		audienceWeight*d.AudienceScore +
		engagementWeight*d.EngagementScore

	return MatchResult{
		CampaignID:    c.ID,
		InfluencerID:  inf.ID,
		CampaignTitle: c.Title,
		MatchScore:    int(math.Round(weighted * 100)),
		MatchDetails:  d,
	}
}

// normalizeInfluencer trims string fields once, up front, so the sub-score
// functions never have to care about whitespace or empty-but-set values.
func normalizeInfluencer(inf InfluencerProfile) InfluencerProfile {
	inf.Niches = trimTags(inf.Niches)
	inf.Location = trimOpt(inf.Location)
	return inf
}

func normalizeCampaign(c CampaignDescriptor) CampaignDescriptor {
	c.TargetNiches = trimTags(c.TargetNiches)
	c.TargetLocation = trimOpt(c.TargetLocation)
	return c
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// trimOpt treats a blank string as absent.
func trimOpt(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// nicheScore is the fraction of the campaign's requested niches the
// influencer covers. Asymmetric on purpose: extra unrelated niches on the
// influencer side are not penalized.
func nicheScore(target, have []string) float64 {
	if len(target) == 0 || len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, n := range have {
		set[n] = struct{}{}
	}
	hits := 0
	for _, n := range target {
		if _, ok := set[n]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(target))
}

// locationScore is exact case-insensitive equality; no fuzzy geo matching.
func locationScore(target, have *string) float64 {
	if target == nil || have == nil {
		return neutral
	}
	if strings.EqualFold(*target, *have) {
		return 1
	}
	return 0
}

// audienceScore ramps linearly toward 0 below the range minimum and decays
// linearly above the maximum, hitting 0 once the audience doubles past max.
func audienceScore(r *AudienceRange, size *int64) float64 {
	if r == nil || (r.Min == nil && r.Max == nil) || size == nil {
		return neutral
	}
	s := float64(*size)

	if r.Min != nil && s < float64(*r.Min) {
		if *r.Min <= 0 {
			return 1
		}
		return clamp01(s / float64(*r.Min))
	}
	if r.Max != nil && s > float64(*r.Max) {
		if *r.Max <= 0 {
			return 0
		}
		return clamp01(1 - (s-float64(*r.Max))/float64(*r.Max))
	}
	return 1
}

// engagementScore prefers the reported rate and falls back to a rate derived
// from raw metrics. Missing like/comment counts are treated as 0.
func engagementScore(rate *float64, m *Metrics) float64 {
	if rate != nil {
		return clamp01(*rate / engagementCeiling)
	}
	if m != nil && m.Followers != nil && *m.Followers > 0 &&
		(m.AverageLikes != nil || m.AverageComments != nil) {
		var interactions float64
		if m.AverageLikes != nil {
			interactions += *m.AverageLikes
		}
		if m.AverageComments != nil {
			interactions += *m.AverageComments
		}
		calculated := interactions / float64(*m.Followers)
		return clamp01(calculated / engagementCeiling)
	}
	return neutral
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
