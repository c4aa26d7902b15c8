package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to LeadStatus
		want     bool
	}{
		{LeadCaptured, LeadOffered, true},
		{LeadCaptured, LeadSold, false},
		{LeadOffered, LeadSold, true},
		{LeadOffered, LeadInReview, true},
		{LeadReserved, LeadOffered, true},
		{LeadInReview, LeadRejected, true},
		{LeadSold, LeadOffered, false},
		{LeadRejected, LeadOffered, false},
		{LeadOffered, LeadCaptured, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLead_Purchasable(t *testing.T) {
	lead := NewLead(VerticalFopep, RiskLow, IntentionHigh, 700, 1000, 500, LeadOffered)
	assert.True(t, lead.Purchasable())

	lead.Sold = true
	assert.False(t, lead.Purchasable())

	lead = NewLead(VerticalFopep, RiskLow, IntentionHigh, 700, 1000, 500, LeadCaptured)
	assert.False(t, lead.Purchasable())
}

func TestCriteria_Matches(t *testing.T) {
	lead := NewLead(VerticalColpensiones, RiskMedium, IntentionHigh, 650, 2000000, 1000000, LeadOffered)
	vertical, otherVertical := VerticalColpensiones, VerticalMilitary
	risk := RiskMedium
	minScore, tooHigh := 650, 651
	maxPrice, tooCheap := int64(1000000), int64(999999)
	zero := int64(0)

	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"empty matches everything", Criteria{}, true},
		{"all bounds inclusive", Criteria{Vertical: &vertical, Risk: &risk, MinScore: &minScore, MaxPriceCents: &maxPrice}, true},
		{"vertical mismatch", Criteria{Vertical: &otherVertical}, false},
		{"score below minimum", Criteria{MinScore: &tooHigh}, false},
		{"price above maximum", Criteria{MaxPriceCents: &tooCheap}, false},
		{"zero max price is a real bound", Criteria{MaxPriceCents: &zero}, false},
		{"zero min requested", Criteria{MinRequestedCents: &zero}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(lead))
		})
	}
}
