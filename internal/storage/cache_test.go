package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"influencer-match-engine/internal/scoring"
)

func TestCampaignCache(t *testing.T) {
	cc := NewCampaignCache()
	assert.Nil(t, cc.ActiveCampaigns(), "empty cache returns nil")

	cc.Update([]scoring.CampaignDescriptor{{ID: "c1"}, {ID: "c2"}})
	got := cc.ActiveCampaigns()
	assert.Len(t, got, 2)

	// the returned slice is a copy; mutating it must not touch the snapshot
	got[0].ID = "mutated"
	assert.Equal(t, "c1", cc.ActiveCampaigns()[0].ID)

	cc.Update([]scoring.CampaignDescriptor{{ID: "c3"}})
	assert.Len(t, cc.ActiveCampaigns(), 1)
}
