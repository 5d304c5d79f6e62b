// Package scorer assigns priorities and scores to leads, either through a
// remote language model or through deterministic rules.
package scorer

import (
	"context"
	"math"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// Scorer produces an analysis for one lead.
type Scorer interface {
	Score(ctx context.Context, lead model.Lead) (model.LeadAnalysis, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, lead model.Lead) (model.LeadAnalysis, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, lead model.Lead) (model.LeadAnalysis, error) {
	return f(ctx, lead)
}

// CommonPatterns is the fixed pattern list reported with every bulk summary.
var CommonPatterns = []string{
	"Most leads have Facebook advertising experience",
	"Website presence correlates with higher scores",
	"Contact information completeness affects priority",
}

const maxTopOpportunities = 5

// Summarize aggregates analyses into a bulk summary.
func Summarize(analyses []model.LeadAnalysis) model.BulkSummary {
	s := model.BulkSummary{
		TopOpportunities: make([]string, 0, maxTopOpportunities),
		CommonPatterns:   append([]string(nil), CommonPatterns...),
	}
	if len(analyses) == 0 {
		return s
	}

	var total float64
	seen := make(map[string]struct{})
	for _, a := range analyses {
		total += a.Score
		if a.Priority.IsHigh() {
			s.HighPriorityCount++
		}
		for _, opp := range a.Opportunities {
			if len(s.TopOpportunities) == maxTopOpportunities {
				break
			}
			if _, dup := seen[opp]; dup {
				continue
			}
			seen[opp] = struct{}{}
			s.TopOpportunities = append(s.TopOpportunities, opp)
		}
	}
	s.AverageScore = int(math.Round(total / float64(len(analyses))))
	return s
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
