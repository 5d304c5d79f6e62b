// Package query filters and orders lead collections for the dashboard table.
package query

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// All is the sentinel that disables a state or search-term filter.
const All = "all"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultSortField is used when no or an unknown sort field is requested.
const DefaultSortField = "leadScore"

// Params is a parsed table query.
type Params struct {
	Search     string
	State      string
	SearchTerm string
	SortBy     string
	SortDir    Direction
}

// ParseParams reads a table query from URL values. Unknown or malformed
// values fall back to their no-op defaults.
func ParseParams(v url.Values) Params {
	p := Params{
		Search:     v.Get("search"),
		State:      v.Get("state"),
		SearchTerm: v.Get("searchTerm"),
		SortBy:     v.Get("sortBy"),
		SortDir:    ParseDirection(v.Get("sortDir")),
	}
	if _, ok := sortKeys[p.SortBy]; !ok {
		p.SortBy = DefaultSortField
	}
	return p
}

// ParseDirection returns Asc for "asc" (any case) and Desc otherwise.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Apply runs search, state filter, search-term filter and sort, in that order.
func Apply(leads []model.Lead, p Params) []model.Lead {
	out := Search(leads, p.Search)
	out = FilterByState(out, p.State)
	out = FilterBySearchTerm(out, p.SearchTerm)
	return Sort(out, p.SortBy, p.SortDir)
}

// Search keeps leads where q appears, case-insensitively, in the search term,
// page name, state, address, website or phone. A blank query keeps all;
// otherwise q is matched as given, surrounding spaces included.
func Search(leads []model.Lead, q string) []model.Lead {
	if strings.TrimSpace(q) == "" {
		return clone(leads)
	}
	fold := cases.Fold()
	needle := fold.String(q)
	return filter(leads, func(l model.Lead) bool {
		for _, field := range []string{l.SearchTerm, l.PageName, l.State, l.Address, l.Website, l.Phone} {
			if strings.Contains(fold.String(field), needle) {
				return true
			}
		}
		return false
	})
}

// FilterByState keeps leads in the given state. "" and "all" disable it.
func FilterByState(leads []model.Lead, state string) []model.Lead {
	if state == "" || state == All {
		return clone(leads)
	}
	return filter(leads, func(l model.Lead) bool { return l.State == state })
}

// FilterBySearchTerm keeps leads found by the given search term. "" and
// "all" disable it.
func FilterBySearchTerm(leads []model.Lead, term string) []model.Lead {
	if term == "" || term == All {
		return clone(leads)
	}
	return filter(leads, func(l model.Lead) bool { return l.SearchTerm == term })
}

type sortKey struct {
	num func(model.Lead) float64
	str func(model.Lead) string
}

var sortKeys = map[string]sortKey{
	"id":                {num: func(l model.Lead) float64 { return float64(l.ID) }},
	"totalReach":        {num: func(l model.Lead) float64 { return float64(l.TotalReach) }},
	"leadScore":         {num: func(l model.Lead) float64 { return l.LeadScore }},
	"searchTerm":        {str: func(l model.Lead) string { return l.SearchTerm }},
	"state":             {str: func(l model.Lead) string { return l.State }},
	"pageName":          {str: func(l model.Lead) string { return l.PageName }},
	"pageId":            {str: func(l model.Lead) string { return l.PageID }},
	"adType":            {str: func(l model.Lead) string { return l.AdType }},
	"spendRange":        {str: func(l model.Lead) string { return l.SpendRange }},
	"impressions":       {str: func(l model.Lead) string { return l.Impressions }},
	"platforms":         {str: func(l model.Lead) string { return l.Platforms }},
	"startDate":         {str: func(l model.Lead) string { return l.StartDate }},
	"stopDate":          {str: func(l model.Lead) string { return deref(l.StopDate) }},
	"durationDays":      {str: func(l model.Lead) string { return deref(l.DurationDays) }},
	"fbLink":            {str: func(l model.Lead) string { return l.FBLink }},
	"adLink":            {str: func(l model.Lead) string { return l.AdLink }},
	"address":           {str: func(l model.Lead) string { return l.Address }},
	"website":           {str: func(l model.Lead) string { return l.Website }},
	"normalizedWebsite": {str: func(l model.Lead) string { return l.NormalizedWebsite }},
	"phone":             {str: func(l model.Lead) string { return l.Phone }},
	"leadPriority":      {str: func(l model.Lead) string { return l.LeadPriority }},
}

// Sort returns a stably sorted copy of leads. Numeric fields compare
// numerically and all others as case-insensitive strings.
func Sort(leads []model.Lead, field string, dir Direction) []model.Lead {
	key, ok := sortKeys[field]
	if !ok {
		key = sortKeys[DefaultSortField]
	}
	if dir != Asc {
		dir = Desc
	}

	var compare func(a, b model.Lead) int
	if key.num != nil {
		compare = func(a, b model.Lead) int { return cmp.Compare(key.num(a), key.num(b)) }
	} else {
		coll := collate.New(language.Und, collate.IgnoreCase)
		compare = func(a, b model.Lead) int { return coll.CompareString(key.str(a), key.str(b)) }
	}

	out := clone(leads)
	slices.SortStableFunc(out, func(a, b model.Lead) int {
		if dir == Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func filter(leads []model.Lead, keep func(model.Lead) bool) []model.Lead {
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func clone(leads []model.Lead) []model.Lead {
	out := make([]model.Lead, len(leads))
	copy(out, leads)
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
