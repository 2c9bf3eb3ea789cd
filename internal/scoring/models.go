package scoring

// Metrics is the structured fallback for influencers that have no
// precomputed engagement rate.
type Metrics struct {
	Followers       *int64
	AverageLikes    *float64
	AverageComments *float64
}

// InfluencerProfile is the read-only scoring input for one influencer.
// Everything except ID is optional; absent fields score neutrally.
type InfluencerProfile struct {
	ID             string
	Niches         []string
	Location       *string
	AudienceSize   *int64
	EngagementRate *float64 // fraction in [0,1]
	Metrics        *Metrics
}

// AudienceRange is a campaign's acceptable audience-size band.
// Min <= Max when both are set; the scorer does not enforce this.
type AudienceRange struct {
	Min *int64
	Max *int64
}

// CampaignDescriptor is the read-only scoring input for one campaign.
type CampaignDescriptor struct {
	ID                 string
	Title              string
	Status             string // "active" | "draft" | "closed"
	TargetNiches       []string
	TargetLocation     *string
	TargetAudienceSize *AudienceRange
}

// MatchDetails breaks the final score into its four sub-scores, each in [0,1].
type MatchDetails struct {
	NicheScore      float64 `json:"nicheScore"`
	LocationScore   float64 `json:"locationScore"`
	AudienceScore   float64 `json:"audienceScore"`
	EngagementScore float64 `json:"engagementScore"`
}

// MatchResult is the scored pairing of one influencer and one campaign.
// Computed on demand, never persisted.
type MatchResult struct {
	CampaignID    string       `json:"campaignId"`
	InfluencerID  string       `json:"influencerId"`
	CampaignTitle string       `json:"campaignTitle"`
	MatchScore    int          `json:"matchScore"`
	MatchDetails  MatchDetails `json:"matchDetails"`
}
