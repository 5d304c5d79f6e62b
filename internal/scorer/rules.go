package scorer

import (
	"context"
	"strings"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// highReach is the reach above which a lead earns a reach bonus.
const highReach = 50000

// FallbackScorer scores a lead from its existing lead score and contact
// completeness. It is used when the remote scorer fails.
type FallbackScorer struct{}

// Score implements Scorer. It never fails.
func (FallbackScorer) Score(_ context.Context, lead model.Lead) (model.LeadAnalysis, error) {
	return Fallback(lead), nil
}

// Fallback returns the rule-based analysis for lead. A lead score of 0 is
// treated as unscored and starts from 50.
func Fallback(lead model.Lead) model.LeadAnalysis {
	score := lead.LeadScore
	if score == 0 {
		score = 50
	}
	if lead.HasWebsite() {
		score += 10
	}
	if lead.HasPhone() {
		score += 10
	}
	if lead.TotalReach > highReach {
		score += 5
	}
	score = clampScore(score)

	return model.LeadAnalysis{
		LeadID:          lead.ID,
		Score:           score,
		Priority:        model.PriorityForScore(score),
		Confidence:      0.5,
		Insights:        []string{"Basic analysis - AI service unavailable"},
		Recommendations: []string{"Manual review recommended"},
		NextSteps:       []string{"Contact lead for qualification"},
		RiskFactors:     []string{"Limited data analysis"},
		Opportunities:   []string{"Potential customer from Facebook ads"},
		Source:          model.SourceFallback,
	}
}

// HeuristicScorer is the cheap pattern-based scorer used for leads beyond
// the remote budget of a bulk run.
type HeuristicScorer struct{}

// Score implements Scorer. It never fails.
func (HeuristicScorer) Score(_ context.Context, lead model.Lead) (model.LeadAnalysis, error) {
	return Heuristic(lead), nil
}

// Heuristic returns the pattern-based analysis for lead.
func Heuristic(lead model.Lead) model.LeadAnalysis {
	hasWebsite := lead.HasWebsite()
	hasPhone := lead.HasPhone()
	reach := lead.TotalReach > highReach
	spend := lead.SpendRange != "" && !strings.Contains(lead.SpendRange, "N/A")

	score := 50.0
	if hasWebsite {
		score += 15
	}
	if hasPhone {
		score += 15
	}
	if lead.HasAddress() {
		score += 10
	}
	if reach {
		score += 10
	}
	if spend {
		score += 10
	}
	score = clampScore(score)

	a := model.LeadAnalysis{
		LeadID:     lead.ID,
		Score:      score,
		Priority:   model.PriorityForScore(score),
		Confidence: 0.7,
		Insights: []string{
			pick(hasWebsite, "Has established web presence", "No website provided"),
			pick(reach, "High advertising reach indicates budget", "Limited advertising reach"),
		},
		Recommendations: []string{
			pick(hasPhone, "Direct phone contact available", "Request contact information"),
			pick(hasWebsite, "Review website for business scale", "Help establish web presence"),
		},
		NextSteps: []string{
			"Initial contact within 24 hours",
			"Qualify budget and timeline",
		},
		RiskFactors: []string{},
		Opportunities: []string{
			"Facebook advertising experience",
			pick(spend, "Existing marketing budget", "Marketing budget development"),
		},
		Source: model.SourceHeuristic,
	}
	if !hasWebsite {
		a.RiskFactors = append(a.RiskFactors, "No web presence")
	}
	if !hasPhone {
		a.RiskFactors = append(a.RiskFactors, "Limited contact options")
	}
	return a
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
