package scorer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// SystemPrompt frames the model as a lead-qualification analyst.
const SystemPrompt = "You are an expert B2B sales analyst specializing in Facebook advertising lead qualification. " +
	"Provide detailed, actionable analysis based on business data patterns, market indicators, and engagement metrics."

const promptInstructions = `Analyze for:
1. Lead quality and conversion potential (0-100 score)
2. Priority level (low/medium/high/urgent)
3. Confidence in assessment (0-1)
4. Key insights about the business
5. Specific recommendations for follow-up
6. Next steps to take
7. Risk factors to consider
8. Growth opportunities

Respond with JSON in this exact format:
{
  "score": number,
  "priority": "low|medium|high|urgent",
  "confidence": number,
  "insights": ["insight1", "insight2"],
  "recommendations": ["rec1", "rec2"],
  "nextSteps": ["step1", "step2"],
  "riskFactors": ["risk1", "risk2"],
  "opportunities": ["opp1", "opp2"]
}`

// ErrMalformedResponse is returned when the model reply holds no usable analysis.
var ErrMalformedResponse = eris.New("scorer: malformed response")

// BuildPrompt renders the user prompt for lead.
func BuildPrompt(lead model.Lead) string {
	var b strings.Builder
	b.WriteString("Analyze this Facebook advertising lead for sales potential and provide scoring:\n\n")
	b.WriteString("Lead Details:\n")
	line := func(label, value string) {
		b.WriteString("- ")
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}
	line("Business", lead.PageName)
	line("Search Term", lead.SearchTerm)
	line("State", lead.State)
	line("Ad Spend", lead.SpendRange)
	line("Reach", strconv.FormatInt(lead.TotalReach, 10))
	line("Platforms", lead.Platforms)
	line("Website", orNotProvided(lead.Website))
	line("Phone", orNotProvided(lead.Phone))
	line("Address", orNotProvided(lead.Address))
	line("Current Score", strconv.FormatFloat(lead.LeadScore, 'f', -1, 64))
	b.WriteByte('\n')
	b.WriteString(promptInstructions)
	return b.String()
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

type remoteAnalysis struct {
	Score           *float64 `json:"score"`
	Priority        string   `json:"priority"`
	Confidence      *float64 `json:"confidence"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	NextSteps       []string `json:"nextSteps"`
	RiskFactors     []string `json:"riskFactors"`
	Opportunities   []string `json:"opportunities"`
}

// ParseAnalysis decodes a model reply into an analysis for leadID. The reply
// may wrap the JSON object in prose or code fences. Score and confidence are
// clamped; a missing confidence defaults to 0.5 and an unrecognized priority
// is derived from the score.
func ParseAnalysis(leadID int, reply string) (model.LeadAnalysis, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return model.LeadAnalysis{}, ErrMalformedResponse
	}

	var ra remoteAnalysis
	if err := json.Unmarshal([]byte(reply[start:end+1]), &ra); err != nil {
		return model.LeadAnalysis{}, eris.Wrap(ErrMalformedResponse, err.Error())
	}
	if ra.Score == nil {
		return model.LeadAnalysis{}, eris.Wrap(ErrMalformedResponse, "missing score")
	}

	score := clampScore(*ra.Score)
	confidence := 0.5
	if ra.Confidence != nil {
		confidence = clampConfidence(*ra.Confidence)
	}
	priority, ok := model.ParsePriority(ra.Priority)
	if !ok {
		priority = model.PriorityForScore(score)
	}

	return model.LeadAnalysis{
		LeadID:          leadID,
		Score:           score,
		Priority:        priority,
		Confidence:      confidence,
		Insights:        nonNil(ra.Insights),
		Recommendations: nonNil(ra.Recommendations),
		NextSteps:       nonNil(ra.NextSteps),
		RiskFactors:     nonNil(ra.RiskFactors),
		Opportunities:   nonNil(ra.Opportunities),
		Source:          model.SourceRemote,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
