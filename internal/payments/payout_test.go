package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FeeArithmetic(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		feePercent int
		wantFee    int64
		wantNet    int64
	}{
		{"even split", 10000, 10, 1000, 9000},
		{"rounds half up", 1005, 10, 101, 904},
		{"small amount", 1, 10, 0, 1},
		{"higher fee", 20000, 15, 3000, 17000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New("c1", "i1", tt.amount, tt.feePercent)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, p.FeeCents)
			assert.Equal(t, tt.wantNet, p.NetCents)
			assert.Equal(t, p.AmountCents, p.FeeCents+p.NetCents)
			assert.Equal(t, StatusPending, p.Status)
			assert.NotEmpty(t, p.ID)
		})
	}
}

func TestNew_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []int64{0, -500} {
		_, err := New("c1", "i1", amount, 10)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusFailed, StatusProcessing},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	denied := [][2]Status{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusCompleted, StatusProcessing},
		{StatusCompleted, StatusFailed},
		{StatusFailed, StatusCompleted},
		{StatusProcessing, StatusPending},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s should be denied", tr[0], tr[1])
	}
}
