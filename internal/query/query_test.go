package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-dashboard/internal/model"
)

func sampleLeads() []model.Lead {
	return []model.Lead{
		{ID: 1, SearchTerm: "coffee shops", State: "VIC", PageName: "banana Cafe", Website: "https://banana.test", TotalReach: 500, LeadScore: 70},
		{ID: 2, SearchTerm: "plumbing services", State: "NSW", PageName: "Apple Plumbing", Phone: "(02) 9876 5432", TotalReach: 28475, LeadScore: 92},
		{ID: 3, SearchTerm: "coffee shops", State: "NSW", PageName: "cherry Roasters", Address: "1 George St, Sydney", TotalReach: 100, LeadScore: 70},
		{ID: 4, SearchTerm: "dental clinics", State: "Unknown", PageName: "Delta Dental", TotalReach: 475658, LeadScore: 10},
	}
}

func ids(leads []model.Lead) []int {
	out := make([]int, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func TestSearch_EmptyIsIdentity(t *testing.T) {
	t.Parallel()

	in := sampleLeads()
	assert.Equal(t, in, Search(in, ""))
	assert.Equal(t, in, Search(in, "   "))
}

func TestSearch_CaseInsensitiveAcrossFields(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	assert.Equal(t, []int{1, 3}, ids(Search(in, "COFFEE")))
	assert.Equal(t, []int{2}, ids(Search(in, "apple")))
	assert.Equal(t, []int{2, 3}, ids(Search(in, "nsw")))
	assert.Equal(t, []int{3}, ids(Search(in, "george st")))
	assert.Equal(t, []int{1}, ids(Search(in, "banana.test")))
	assert.Equal(t, []int{2}, ids(Search(in, "9876")))
	assert.Empty(t, Search(in, "zzz"))
}

func TestSearch_KeepsSurroundingSpaces(t *testing.T) {
	t.Parallel()

	in := []model.Lead{
		{ID: 1, PageName: "JoeCoffee"},
		{ID: 2, PageName: "Joe Coffee"},
		{ID: 3, SearchTerm: "coffee shops"},
	}

	assert.Equal(t, []int{2}, ids(Search(in, " coffee")))
	assert.Equal(t, []int{3}, ids(Search(in, "coffee ")))
	assert.Equal(t, []int{1, 2, 3}, ids(Search(in, "coffee")))
}

func TestFilterByState(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	assert.Equal(t, in, FilterByState(in, All))
	assert.Equal(t, in, FilterByState(in, ""))
	assert.Equal(t, []int{2, 3}, ids(FilterByState(in, "NSW")))
	assert.Empty(t, FilterByState(in, "nsw"))
}

func TestFilterBySearchTerm(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	assert.Equal(t, in, FilterBySearchTerm(in, All))
	assert.Equal(t, []int{1, 3}, ids(FilterBySearchTerm(in, "coffee shops")))
	assert.Empty(t, FilterBySearchTerm(in, "coffee"))
}

func TestSort_Numeric(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	assert.Equal(t, []int{4, 2, 1, 3}, ids(Sort(in, "totalReach", Desc)))
	assert.Equal(t, []int{3, 1, 2, 4}, ids(Sort(in, "totalReach", Asc)))
}

func TestSort_StableOnTies(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	// Leads 1 and 3 share a score and keep their input order in both directions.
	assert.Equal(t, []int{2, 1, 3, 4}, ids(Sort(in, "leadScore", Desc)))
	assert.Equal(t, []int{4, 1, 3, 2}, ids(Sort(in, "leadScore", Asc)))
}

func TestSort_StringsIgnoreCase(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	assert.Equal(t, []int{2, 1, 3, 4}, ids(Sort(in, "pageName", Asc)))
	assert.Equal(t, []int{4, 3, 1, 2}, ids(Sort(in, "pageName", Desc)))
}

func TestSort_UnknownFieldUsesDefault(t *testing.T) {
	t.Parallel()

	in := sampleLeads()
	assert.Equal(t, ids(Sort(in, DefaultSortField, Desc)), ids(Sort(in, "bogus", "sideways")))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := sampleLeads()
	_ = Sort(in, "pageName", Asc)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(in))
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	p := ParseParams(url.Values{
		"search":     {"  cafe "},
		"state":      {"NSW"},
		"searchTerm": {"coffee shops"},
		"sortBy":     {"pageName"},
		"sortDir":    {"ASC"},
	})
	assert.Equal(t, Params{Search: "  cafe ", State: "NSW", SearchTerm: "coffee shops", SortBy: "pageName", SortDir: Asc}, p)

	def := ParseParams(url.Values{"sortBy": {"nope"}, "sortDir": {"up"}})
	assert.Equal(t, DefaultSortField, def.SortBy)
	assert.Equal(t, Desc, def.SortDir)
}

func TestApply(t *testing.T) {
	t.Parallel()

	in := sampleLeads()

	got := Apply(in, Params{Search: "coffee", State: "NSW", SearchTerm: All, SortBy: "leadScore", SortDir: Desc})
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)

	all := Apply(in, Params{State: All, SearchTerm: All, SortBy: "id", SortDir: Asc})
	assert.Equal(t, []int{1, 2, 3, 4}, ids(all))
	assert.LessOrEqual(t, len(Apply(in, Params{Search: "a"})), len(in))
}
