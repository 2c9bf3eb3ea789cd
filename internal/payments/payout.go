package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Amounts are integer cents throughout; the platform fee is deducted from
// the gross amount before disbursement.

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var ErrInvalidAmount = errors.New("payout amount must be positive")

// TransitionError reports a disallowed payout status change.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("payout cannot move from %s to %s", e.From, e.To)
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusFailed:     {StatusProcessing}, // retry
}

// CanTransition reports whether a payout may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Payout struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaignId"`
	InfluencerID string    `json:"influencerId"`
	AmountCents  int64     `json:"amountCents"`
	FeeCents     int64     `json:"feeCents"`
	NetCents     int64     `json:"netCents"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// New builds a pending payout with the platform fee taken off the top.
// feePercent is a whole percentage (10 means 10%); the fee rounds half up.
func New(campaignID, influencerID string, amountCents int64, feePercent int) (Payout, error) {
	if amountCents <= 0 {
		return Payout{}, ErrInvalidAmount
	}
	fee := (amountCents*int64(feePercent) + 50) / 100
	now := time.Now().UTC()
	return Payout{
		ID:           uuid.NewString(),
		CampaignID:   campaignID,
		InfluencerID: influencerID,
		AmountCents:  amountCents,
		FeeCents:     fee,
		NetCents:     amountCents - fee,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
