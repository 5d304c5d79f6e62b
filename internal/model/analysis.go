package model

import "strings"

// Priority is a coarse urgency classification of a lead.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority parses a priority case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	default:
		return "", false
	}
}

// PriorityForScore maps a 0-100 score onto the priority thresholds.
func PriorityForScore(score float64) Priority {
	switch {
	case score >= 80:
		return PriorityHigh
	case score >= 60:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// IsHigh reports whether the priority counts as high for summaries.
func (p Priority) IsHigh() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// AnalysisSource identifies which scorer produced an analysis.
type AnalysisSource string

const (
	SourceRemote    AnalysisSource = "remote"
	SourceFallback  AnalysisSource = "fallback"
	SourceHeuristic AnalysisSource = "heuristic"
)

// LeadAnalysis is the scored assessment of one lead.
type LeadAnalysis struct {
	LeadID          int            `json:"leadId"`
	Score           float64        `json:"score"`
	Priority        Priority       `json:"priority"`
	Confidence      float64        `json:"confidence"`
	Insights        []string       `json:"insights"`
	Recommendations []string       `json:"recommendations"`
	NextSteps       []string       `json:"nextSteps"`
	RiskFactors     []string       `json:"riskFactors"`
	Opportunities   []string       `json:"opportunities"`
	Source          AnalysisSource `json:"source"`
}

// BulkSummary aggregates a set of analyses.
type BulkSummary struct {
	AverageScore      int      `json:"averageScore"`
	HighPriorityCount int      `json:"highPriorityCount"`
	TopOpportunities  []string `json:"topOpportunities"`
	CommonPatterns    []string `json:"commonPatterns"`
}

// BulkAnalysis is the result of analyzing many leads at once.
type BulkAnalysis struct {
	Analyses []LeadAnalysis `json:"analyses"`
	Summary  BulkSummary    `json:"summary"`
}
