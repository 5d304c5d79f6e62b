package model

// Lead is one scraped advertiser record. Leads are values: once built by the
// normalizer they are never mutated, and every derived view is a fresh slice.
type Lead struct {
	ID                int     `json:"id"`
	SearchTerm        string  `json:"searchTerm"`
	State             string  `json:"state"`
	PageName          string  `json:"pageName"`
	PageID            string  `json:"pageId"`
	AdType            string  `json:"adType"`
	SpendRange        string  `json:"spendRange"`
	Impressions       string  `json:"impressions"`
	TotalReach        int64   `json:"totalReach"`
	Platforms         string  `json:"platforms"`
	StartDate         string  `json:"startDate"`
	StopDate          *string `json:"stopDate"`
	DurationDays      *string `json:"durationDays"`
	FBLink            string  `json:"fbLink"`
	AdLink            string  `json:"adLink"`
	Address           string  `json:"address"`
	Website           string  `json:"website"`
	NormalizedWebsite string  `json:"normalizedWebsite"`
	Phone             string  `json:"phone"`
	LeadScore         float64 `json:"leadScore"`
	LeadPriority      string  `json:"leadPriority"`
}

// UnknownState is the state assigned to leads without one.
const UnknownState = "Unknown"

// HasWebsite reports whether the lead carries a website.
func (l Lead) HasWebsite() bool { return l.Website != "" }

// HasPhone reports whether the lead carries a phone number.
func (l Lead) HasPhone() bool { return l.Phone != "" }

// HasAddress reports whether the lead carries a street address.
func (l Lead) HasAddress() bool { return l.Address != "" }

// LeadStats summarizes an entire lead collection.
type LeadStats struct {
	TotalLeads   int     `json:"totalLeads" yaml:"totalLeads"`
	TotalSpend   float64 `json:"totalSpend" yaml:"totalSpend"`
	TotalReach   int64   `json:"totalReach" yaml:"totalReach"`
	HighPriority int     `json:"highPriority" yaml:"highPriority"`
}

// StateStats is the lead count for a single state.
type StateStats struct {
	Name       string  `json:"name" yaml:"name"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}
