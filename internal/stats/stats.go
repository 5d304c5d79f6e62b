// Package stats computes dashboard aggregates over a lead collection.
package stats

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// RecentCap is the number of leads returned by Recent without a window.
const RecentCap = 10

const dateLayout = "2006-01-02"

// Compute reduces leads to their summary totals. The result does not depend
// on input order.
func Compute(leads []model.Lead) model.LeadStats {
	s := model.LeadStats{TotalLeads: len(leads)}
	for _, l := range leads {
		s.TotalSpend += Spend(l.SpendRange)
		s.TotalReach += l.TotalReach
		if p, ok := model.ParsePriority(l.LeadPriority); ok && p == model.PriorityHigh {
			s.HighPriority++
		}
	}
	return s
}

// Spend estimates ad spend from a "min-max" range. The upper bound is used
// when it is present and non-zero, then the lower bound, then 0. "N/A" and
// values without a dash count as 0. With several dashes the second field is
// the upper bound, so "1-2-3" counts as 2.
func Spend(spendRange string) float64 {
	r := strings.TrimSpace(spendRange)
	if r == "N/A" || !strings.Contains(r, "-") {
		return 0
	}
	parts := strings.Split(r, "-")
	if v := parseAmount(parts[1]); v != 0 {
		return v
	}
	return parseAmount(parts[0])
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// States counts leads per state, largest first. Ties keep the order in which
// each state was first seen. Percentages are rounded to one decimal.
func States(leads []model.Lead) []model.StateStats {
	counts := make(map[string]int)
	var order []string
	for _, l := range leads {
		name := l.State
		if strings.TrimSpace(name) == "" {
			name = model.UnknownState
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	out := make([]model.StateStats, 0, len(order))
	for _, name := range order {
		out = append(out, model.StateStats{
			Name:       name,
			Count:      counts[name],
			Percentage: percentage(counts[name], len(leads)),
		})
	}
	slices.SortStableFunc(out, func(a, b model.StateStats) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

// Window selects recent leads. The zero Window means "most recently loaded".
type Window struct {
	// Since is an explicit cut-off date. It takes precedence over Days.
	Since time.Time
	// Days selects leads started within the last Days days.
	Days int
	// Now overrides the clock for Days; nil means time.Now.
	Now func() time.Time
}

// IsZero reports whether the window carries no filter.
func (w Window) IsZero() bool {
	return w.Since.IsZero() && w.Days <= 0
}

func (w Window) cutoff() time.Time {
	if !w.Since.IsZero() {
		return truncateDay(w.Since)
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return truncateDay(now().AddDate(0, 0, -w.Days))
}

// Recent returns the newest leads. Without a window it returns up to
// RecentCap leads with the highest ids. With a window it returns every lead
// whose start date is on or after the cut-off, highest lead score first.
func Recent(leads []model.Lead, w Window) []model.Lead {
	if w.IsZero() {
		out := append(make([]model.Lead, 0, len(leads)), leads...)
		slices.SortStableFunc(out, func(a, b model.Lead) int { return cmp.Compare(b.ID, a.ID) })
		if len(out) > RecentCap {
			out = out[:RecentCap]
		}
		return out
	}

	cut := w.cutoff()
	out := make([]model.Lead, 0)
	for _, l := range leads {
		started, ok := ParseStartDate(l.StartDate)
		if ok && !started.Before(cut) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Lead) int { return cmp.Compare(b.LeadScore, a.LeadScore) })
	return out
}

// ParseStartDate parses the YYYY-MM-DD prefix of a lead date. Empty and
// "N/A" values do not parse.
func ParseStartDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
