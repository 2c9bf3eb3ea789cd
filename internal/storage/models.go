package storage

import "time"

// Application is a submitted influencer application to a campaign. The
// (campaign_id, influencer_id) pair is unique; its existence is what
// excludes the pair from match recommendations.
type Application struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaignId"`
	InfluencerID string    `json:"influencerId"`
	Message      string    `json:"message,omitempty"`
	Status       string    `json:"status"` // "submitted", "accepted", "rejected"
	CreatedAt    time.Time `json:"createdAt"`
}

// Invitation is a brand-initiated offer to a recommended influencer.
type Invitation struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaignId"`
	InfluencerID string    `json:"influencerId"`
	Status       string    `json:"status"` // "sent", "accepted", "declined"
	CreatedAt    time.Time `json:"createdAt"`
}

// Notification is one in-app notification row; email delivery is handled
// separately and best-effort.
type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipientId"`
	Type        string            `json:"type"` // "invitation", "new_application"
	Payload     map[string]string `json:"payload"`
	CreatedAt   time.Time         `json:"createdAt"`
}
