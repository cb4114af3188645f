package engine

import (
	"fmt"
	"testing"

	"github.com/spektr-org/statboard/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// LABEL DERIVER TESTS
// ============================================================================

func TestDeriveLabelsDistinctAndSorted(t *testing.T) {
	rows := []Row{
		{"year": 2021.0}, {"year": 2019.0}, {"year": 2020.0},
		{"year": 2019.0}, {"year": ""}, {"other": "x"},
	}
	f, _ := testFilters.Lookup("fy")

	labels := DeriveLabels(NewSliceView(rows), f, false)
	assert.Equal(t, []string{"2019", "2020", "2021"}, labelTitles(labels))
	for _, l := range labels {
		assert.False(t, l.Checked)
		assert.NotNil(t, l.Values)
	}
}

func TestDeriveLabelsNotReady(t *testing.T) {
	f, _ := testFilters.Lookup("fy")
	labels := DeriveLabels(nil, f, true)
	require.NotNil(t, labels)
	assert.Empty(t, labels)
}

func TestDeriveLabelsTopTenOnDefaultAxis(t *testing.T) {
	var rows []Row
	for i := 12; i >= 1; i-- {
		rows = append(rows, Row{"year": float64(i)})
	}
	f, _ := testFilters.Lookup("fy")

	labels := DeriveLabels(NewSliceView(rows), f, true)
	require.Len(t, labels, 12)
	for i, l := range labels {
		assert.Equal(t, fmt.Sprint(i+1), l.Title)
		assert.Equal(t, i < 10, l.Checked, "label %s", l.Title)
	}

	labels = DeriveLabels(NewSliceView(rows), f, false)
	for _, l := range labels {
		assert.False(t, l.Checked)
	}

	labels = DeriveLabels(NewSliceView(rows), f, true, WithDefaultTopN(3))
	assert.Equal(t, 3, countChecked(labels))
}

func TestSortTitles(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"numeric", []string{"10", "9", "100", "1.5"}, []string{"1.5", "9", "10", "100"}},
		{"digit aware", []string{"age 10", "age 2", "age 1"}, []string{"age 1", "age 2", "age 10"}},
		{"hebrew", []string{"ב", "א", "ג"}, []string{"א", "ב", "ג"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.in...)
			SortTitles(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDefaultAxis(t *testing.T) {
	m := benefitMeasure()
	lookup := func(id string) catalog.Filter {
		f, _ := testFilters.Lookup(id)
		return f
	}

	assert.True(t, IsDefaultAxis(m, lookup("fy"), testFilters), "x-axis")
	assert.True(t, IsDefaultAxis(m, lookup("fr"), testFilters), "first other filter when no y-axis")
	assert.False(t, IsDefaultAxis(m, lookup("fg"), testFilters))

	m.YAxis = "fg"
	assert.False(t, IsDefaultAxis(m, lookup("fr"), testFilters))
	assert.True(t, IsDefaultAxis(m, lookup("fg"), testFilters))

	m.YAxis = "gender"
	assert.True(t, IsDefaultAxis(m, lookup("fg"), testFilters), "y-axis given as column key")
}

func TestBuildFilterGroups(t *testing.T) {
	m := benefitMeasure()
	m.Filters = []string{"fy", "fr", "fy", "unknown", "fg"}

	groups := groupsFor(m, benefitRows)
	require.Len(t, groups, 3)

	assert.Equal(t, "fy", groups[0].Filter.ID)
	assert.Equal(t, "m1", groups[0].MeasureID)
	assert.Equal(t, "Year", groups[0].Title)
	assert.Equal(t, []string{"2020", "2021"}, labelTitles(groups[0].Filter.Labels))
	assert.True(t, groups[0].IsActive())
	assert.True(t, groups[0].Filter.Expanded)

	assert.Equal(t, []string{"A", "B"}, labelTitles(groups[1].Filter.Labels))
	assert.True(t, groups[1].IsActive())

	assert.Equal(t, []string{"F", "M"}, labelTitles(groups[2].Filter.Labels))
	assert.False(t, groups[2].IsActive())
}

func TestSplitXAxis(t *testing.T) {
	m := benefitMeasure()
	groups := groupsFor(m, benefitRows)

	xAxis, rest := SplitXAxis(m, groups)
	require.NotNil(t, xAxis)
	assert.Equal(t, "fy", xAxis.Filter.ID)
	assert.Len(t, rest, 2)

	m.XAxis = "missing"
	xAxis, rest = SplitXAxis(m, groups)
	assert.Nil(t, xAxis)
	assert.Len(t, rest, 3)
}

func countChecked(labels []*Label) int {
	n := 0
	for _, l := range labels {
		if l.Checked {
			n++
		}
	}
	return n
}
