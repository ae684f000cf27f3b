package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitor-management-backend/internal/model"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func sampleVisitors() []model.Visitor {
	return []model.Visitor{
		{ID: "v1", CardNo: "A1", Name: "Jane Doe", Phone: "555-0101", CompanyName: "Acme", ToMeet: "HR", InTime: "2024-03-15T09:00:00Z"},
		{ID: "v2", CardNo: "B2", Name: "Li Wei", Phone: "555-0202", CompanyName: "Globex", ToMeet: "IT", InTime: "2024-03-14T10:00:00Z", OutTime: "2024-03-14T11:00:00Z"},
		{ID: "v3", CardNo: "C3", Name: "Sam Roy", Phone: "", CompanyName: "Acme", ToMeet: "HR", InTime: "2024-02-20T10:00:00Z", OutTime: "2024-02-20T12:00:00Z"},
	}
}

func TestPartitions_DisjointAndExhaustive(t *testing.T) {
	visitors := sampleVisitors()

	present := Present(visitors)
	out := CheckedOut(visitors)

	assert.Equal(t, len(visitors), len(present)+len(out))
	seen := make(map[string]struct{})
	for _, v := range append(present, out...) {
		_, dup := seen[v.ID]
		require.False(t, dup, "visitor %s in both partitions", v.ID)
		seen[v.ID] = struct{}{}
	}
	for _, v := range present {
		assert.Empty(t, v.OutTime)
	}
	for _, v := range out {
		assert.NotEmpty(t, v.OutTime)
	}
}

func TestFilter_CaseInsensitiveSearch(t *testing.T) {
	visitors := sampleVisitors()

	for _, term := range []string{"a1", "A1", "a1 "} {
		matched := Filter(visitors, term, "")
		require.Len(t, matched, 1, "term %q", term)
		assert.Equal(t, "v1", matched[0].ID)
	}

	// OR semantics across card number, phone and name.
	assert.Len(t, Filter(visitors, "555", ""), 2)
	assert.Len(t, Filter(visitors, "jane", ""), 1)
	assert.Len(t, Filter(visitors, "nobody", ""), 0)
	assert.Len(t, Filter(visitors, "", ""), 3)
}

func TestFilter_DateAndTermAreANDed(t *testing.T) {
	visitors := sampleVisitors()

	assert.Len(t, Filter(visitors, "", "2024-03-14"), 1)
	assert.Len(t, Filter(visitors, "li", "2024-03-14"), 1)
	assert.Len(t, Filter(visitors, "jane", "2024-03-14"), 0)
}

func TestInWindow(t *testing.T) {
	visitors := sampleVisitors()

	today := InWindow(visitors, WindowToday, testNow)
	require.Len(t, today, 1)
	assert.Equal(t, "v1", today[0].ID)

	month := InWindow(visitors, WindowMonth, testNow)
	assert.Len(t, month, 2)

	assert.Len(t, InWindow(visitors, WindowAll, testNow), 3)
}

func TestInWindow_UnparseableTimeStaysInAll(t *testing.T) {
	visitors := []model.Visitor{
		{ID: "ok", InTime: "2024-03-15T09:00:00Z"},
		{ID: "imported", InTime: "15/03/2024 09:00"},
	}

	assert.Len(t, InWindow(visitors, WindowAll, testNow), 2)
	today := InWindow(visitors, WindowToday, testNow)
	require.Len(t, today, 1)
	assert.Equal(t, "ok", today[0].ID)
}

func TestSortByInTimeDesc(t *testing.T) {
	visitors := sampleVisitors()
	sorted := SortByInTimeDesc(visitors)

	assert.Equal(t, []string{"v1", "v2", "v3"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	// Input order is untouched.
	assert.Equal(t, "v1", visitors[0].ID)
}

func TestGroupByDate(t *testing.T) {
	visitors := append(sampleVisitors(), model.Visitor{ID: "v4", InTime: "2024-03-15T16:00:00Z"})

	groups := GroupByDate(visitors)
	assert.Len(t, groups, 3)
	assert.Len(t, groups["2024-03-15"], 2)
	assert.Len(t, groups["2024-03-14"], 1)

	assert.Equal(t, []string{"2024-03-15", "2024-03-14", "2024-02-20"}, DatesDesc(groups))
}

func TestChart_CapsToMostRecentDays(t *testing.T) {
	var visitors []model.Visitor
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for day := 0; day < 20; day++ {
		visitors = append(visitors, model.Visitor{
			ID:     string(rune('a' + day)),
			InTime: base.AddDate(0, 0, day).Format(time.RFC3339),
		})
	}

	points := Chart(visitors, 14)
	require.Len(t, points, 14)
	assert.Equal(t, "2024-03-07", points[0].Date)
	assert.Equal(t, "2024-03-20", points[len(points)-1].Date)
	for _, p := range points {
		assert.Equal(t, 1, p.Count)
	}

	assert.Len(t, Chart(visitors, 0), 20)
}

func TestStatistics(t *testing.T) {
	visitors := sampleVisitors()

	s := Statistics(visitors, testNow)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Today)
	assert.Equal(t, 2, s.UniqueCompanies)
	assert.Equal(t, 2, s.UniqueToMeet)

	empty := Statistics(nil, testNow)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.UniqueCompanies)
}
