package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-dashboard/internal/model"
)

func TestFallback_NoBonuses(t *testing.T) {
	a := Fallback(model.Lead{ID: 7, LeadScore: 50, TotalReach: 10000})

	assert.Equal(t, 7, a.LeadID)
	assert.InDelta(t, 50, a.Score, 0.0001)
	assert.Equal(t, model.PriorityLow, a.Priority)
	assert.InDelta(t, 0.5, a.Confidence, 0.0001)
	assert.Equal(t, []string{"Basic analysis - AI service unavailable"}, a.Insights)
	assert.Equal(t, []string{"Manual review recommended"}, a.Recommendations)
	assert.Equal(t, []string{"Contact lead for qualification"}, a.NextSteps)
	assert.Equal(t, []string{"Limited data analysis"}, a.RiskFactors)
	assert.Equal(t, []string{"Potential customer from Facebook ads"}, a.Opportunities)
	assert.Equal(t, model.SourceFallback, a.Source)
}

func TestFallback_Bonuses(t *testing.T) {
	tests := []struct {
		name     string
		lead     model.Lead
		score    float64
		priority model.Priority
	}{
		{"website", model.Lead{LeadScore: 50, Website: "w"}, 60, model.PriorityMedium},
		{"phone", model.Lead{LeadScore: 50, Phone: "p"}, 60, model.PriorityMedium},
		{"reach", model.Lead{LeadScore: 50, TotalReach: 50001}, 55, model.PriorityLow},
		{"reach boundary", model.Lead{LeadScore: 50, TotalReach: 50000}, 50, model.PriorityLow},
		{"all", model.Lead{LeadScore: 60, Website: "w", Phone: "p", TotalReach: 90000}, 85, model.PriorityHigh},
		{"clamped", model.Lead{LeadScore: 95, Website: "w", Phone: "p"}, 100, model.PriorityHigh},
		{"unscored", model.Lead{Website: "w"}, 60, model.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Fallback(tt.lead)
			assert.InDelta(t, tt.score, a.Score, 0.0001)
			assert.Equal(t, tt.priority, a.Priority)
		})
	}
}

func TestFallback_Deterministic(t *testing.T) {
	lead := model.Lead{ID: 3, LeadScore: 72, Website: "w", TotalReach: 60000}
	assert.Equal(t, Fallback(lead), Fallback(lead))

	a, err := FallbackScorer{}.Score(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, Fallback(lead), a)
}

func TestHeuristic_Full(t *testing.T) {
	a := Heuristic(model.Lead{
		ID:         9,
		Website:    "https://x.test",
		Phone:      "123",
		Address:    "1 Main St",
		TotalReach: 60000,
		SpendRange: "100-200",
	})

	assert.Equal(t, 9, a.LeadID)
	assert.InDelta(t, 100, a.Score, 0.0001)
	assert.Equal(t, model.PriorityHigh, a.Priority)
	assert.InDelta(t, 0.7, a.Confidence, 0.0001)
	assert.Equal(t, []string{"Has established web presence", "High advertising reach indicates budget"}, a.Insights)
	assert.Equal(t, []string{"Direct phone contact available", "Review website for business scale"}, a.Recommendations)
	assert.Equal(t, []string{"Initial contact within 24 hours", "Qualify budget and timeline"}, a.NextSteps)
	assert.Empty(t, a.RiskFactors)
	assert.NotNil(t, a.RiskFactors)
	assert.Equal(t, []string{"Facebook advertising experience", "Existing marketing budget"}, a.Opportunities)
	assert.Equal(t, model.SourceHeuristic, a.Source)
}

func TestHeuristic_Sparse(t *testing.T) {
	a := Heuristic(model.Lead{ID: 2, SpendRange: "N/A-N/A"})

	assert.InDelta(t, 50, a.Score, 0.0001)
	assert.Equal(t, model.PriorityLow, a.Priority)
	assert.Equal(t, []string{"No website provided", "Limited advertising reach"}, a.Insights)
	assert.Equal(t, []string{"Request contact information", "Help establish web presence"}, a.Recommendations)
	assert.Equal(t, []string{"No web presence", "Limited contact options"}, a.RiskFactors)
	assert.Equal(t, []string{"Facebook advertising experience", "Marketing budget development"}, a.Opportunities)
}

func TestHeuristic_MediumBand(t *testing.T) {
	a := Heuristic(model.Lead{Phone: "1", SpendRange: "10-20"})
	assert.InDelta(t, 75, a.Score, 0.0001)
	assert.Equal(t, model.PriorityMedium, a.Priority)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.LeadAnalysis{
		{Score: 90, Priority: model.PriorityHigh, Opportunities: []string{"a", "b"}},
		{Score: 61, Priority: model.PriorityUrgent, Opportunities: []string{"b", "c", "d"}},
		{Score: 40, Priority: model.PriorityLow, Opportunities: []string{"e", "f", "g"}},
	})

	assert.Equal(t, 64, s.AverageScore)
	assert.Equal(t, 2, s.HighPriorityCount)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, s.TopOpportunities)
	assert.Equal(t, CommonPatterns, s.CommonPatterns)
}

func TestSummarize_RoundsHalfUp(t *testing.T) {
	s := Summarize([]model.LeadAnalysis{{Score: 50}, {Score: 51}})
	assert.Equal(t, 51, s.AverageScore)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.AverageScore)
	assert.Zero(t, s.HighPriorityCount)
	assert.Empty(t, s.TopOpportunities)
	assert.NotNil(t, s.TopOpportunities)
	assert.Len(t, s.CommonPatterns, 3)
}
