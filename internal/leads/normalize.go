// Package leads turns raw lead records into canonical leads and holds them in
// an immutable snapshot.
package leads

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/lead-dashboard/internal/model"
)

// Record is one raw, untyped lead as read from a source.
type Record = map[string]any

// Normalize converts raw records into leads. IDs follow record order starting
// at 1. Missing fields take their defaults; field content is not validated.
func Normalize(records []Record) []model.Lead {
	out := make([]model.Lead, len(records))
	for i, rec := range records {
		out[i] = normalizeRecord(i+1, rec)
	}
	return out
}

func normalizeRecord(id int, rec Record) model.Lead {
	r := raw(rec)

	state := r.str("state")
	if strings.TrimSpace(state) == "" {
		state = model.UnknownState
	}

	reach := int64(r.num("total_reach", "totalReach"))
	if reach < 0 {
		reach = 0
	}

	return model.Lead{
		ID:                id,
		SearchTerm:        r.str("search_term", "searchTerm"),
		State:             state,
		PageName:          r.str("page_name", "pageName"),
		PageID:            r.str("page_id", "pageId"),
		AdType:            r.str("ad_type", "adType"),
		SpendRange:        r.str("spend_range", "spendRange"),
		Impressions:       r.str("impressions"),
		TotalReach:        reach,
		Platforms:         r.str("platforms"),
		StartDate:         r.str("start_date", "startDate"),
		StopDate:          r.optional("stop_date", "stopDate"),
		DurationDays:      r.optional("duration_days", "durationDays"),
		FBLink:            r.str("fb_link", "fbLink"),
		AdLink:            r.str("ad_link", "adLink"),
		Address:           r.str("address"),
		Website:           r.str("website"),
		NormalizedWebsite: r.str("normalized_website", "normalizedWebsite"),
		Phone:             r.str("phone"),
		LeadScore:         r.num("lead_score", "leadScore"),
		LeadPriority:      r.str("lead_priority", "leadPriority"),
	}
}

// raw looks up a field under any of its accepted key spellings.
type raw map[string]any

func (r raw) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (r raw) str(keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func (r raw) num(keys ...string) float64 {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// optional returns nil for absent values and the "N/A" placeholder.
func (r raw) optional(keys ...string) *string {
	s := r.str(keys...)
	if s == "" || strings.EqualFold(strings.TrimSpace(s), "N/A") {
		return nil
	}
	return &s
}
