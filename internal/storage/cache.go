package storage

import (
	"influencer-match-engine/internal/cache"
	"influencer-match-engine/internal/scoring"
)

// CampaignCache holds the latest active-campaign snapshot for the browse
// endpoint. The listener refreshes it on database change notifications.
type CampaignCache struct {
	snap cache.Snapshot[[]scoring.CampaignDescriptor]
}

func NewCampaignCache() *CampaignCache { return &CampaignCache{} }

// ActiveCampaigns returns a copy of the current snapshot.
func (c *CampaignCache) ActiveCampaigns() []scoring.CampaignDescriptor {
	cs, ok := c.snap.Load()
	if !ok {
		return nil
	}
	return append([]scoring.CampaignDescriptor(nil), cs...)
}

func (c *CampaignCache) Update(cs []scoring.CampaignDescriptor) {
	c.snap.Store(cs)
}
