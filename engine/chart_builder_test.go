package engine

import (
	"testing"

	"github.com/spektr-org/statboard/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// CHART BUILDER TESTS
// ============================================================================

func buildFor(m catalog.Measure, groups []*FilterGroup, rows []Row, rate bool) *GraphData {
	return BuildGraph(GraphInput{
		Measure: m,
		Groups:  groups,
		Rows:    NewSliceView(rows),
		Filters: testFilters,
		Rate:    rate,
	})
}

func TestBuildSeriesRegionExample(t *testing.T) {
	m := catalog.Measure{
		ID: "m", Name: "Example", Filters: []string{"fy", "fr"},
		XAxis: "fy", Value: "value", GraphType: "column",
	}
	rows := []Row{
		{"region": "A", "year": "2020", "value": 50.0},
		{"region": "B", "year": "2020", "value": 30.0},
	}

	graph := buildFor(m, groupsFor(m, rows), rows, false)
	require.NotNil(t, graph)
	require.Len(t, graph.Series, 2)
	assert.Equal(t, "A", graph.Series[0].Name)
	assert.Equal(t, []float64{50}, graph.Series[0].Data)
	assert.Equal(t, "B", graph.Series[1].Name)
	assert.Equal(t, []float64{30}, graph.Series[1].Data)
	assert.Equal(t, []string{"2020"}, graph.CheckedCategories())
	assert.Equal(t, "column", graph.Type)
}

func TestBuildSeriesSingleFilter(t *testing.T) {
	m := benefitMeasure()
	groups := groupsFor(m, benefitRows)

	graph := buildFor(m, groups, benefitRows, false)
	require.NotNil(t, graph)
	assert.Equal(t, []string{"A", "B"}, seriesNames(graph.Series))
	assert.Equal(t, []float64{30, 1}, graph.Series[0].Data)
	assert.Equal(t, []float64{5, 7}, graph.Series[1].Data)
	assert.Equal(t, "Region", graph.Series[0].GroupTitle)
	assert.Equal(t, DefaultPalette[1], graph.Series[0].Color)
	assert.Equal(t, DefaultPalette[2], graph.Series[1].Color)
	assert.Equal(t, "c1", graph.CategoryID)
	assert.Equal(t, []string{"m1"}, graph.MeasureIDs)
}

func TestBuildSeriesStackedBreakdown(t *testing.T) {
	m := benefitMeasure()
	groups := groupsFor(m, benefitRows)
	checkAll(findGroup(groups, "fg"), true)

	graph := buildFor(m, groups, benefitRows, false)
	require.NotNil(t, graph)
	assert.Equal(t, GraphStackedColumn, graph.Type)

	// m + m*n = 2 + 2*2
	require.Len(t, graph.Series, 6)
	assert.Equal(t, []string{"A", "F", "M", "B", "F", "M"}, seriesNames(graph.Series))

	want := []Series{
		{Name: "A", Data: []float64{30, 1}, GroupTitle: "Region", Color: DefaultPalette[0]},
		{Name: "F", Stack: "A", Data: []float64{20, 0}, GroupTitle: "Gender", Color: DefaultPalette[2]},
		{Name: "M", Stack: "A", Data: []float64{10, 1}, GroupTitle: "Gender", Color: DefaultPalette[3]},
		{Name: "B", Data: []float64{5, 7}, GroupTitle: "Region", Color: DefaultPalette[1]},
		{Name: "F", Stack: "B", Data: []float64{0, 7}, GroupTitle: "Gender", Color: DefaultPalette[2]},
		{Name: "M", Stack: "B", Data: []float64{5, 0}, GroupTitle: "Gender", Color: DefaultPalette[3]},
	}
	assert.Equal(t, want, graph.Series)
}

func TestBuildSeriesStackedCount(t *testing.T) {
	m := catalog.Measure{
		ID: "m", Name: "Grid", Filters: []string{"fy", "fr", "fg"},
		XAxis: "fy", Value: "value", GraphType: "line",
	}
	var rows []Row
	for _, r := range []string{"r1", "r2", "r3"} {
		for _, g := range []string{"g1", "g2", "g3", "g4"} {
			rows = append(rows, Row{"year": "2020", "region": r, "gender": g, "value": 1.0})
		}
	}
	groups := groupsFor(m, rows)
	checkOnly(findGroup(groups, "fr"), "r1", "r3")
	checkOnly(findGroup(groups, "fg"), "g1", "g2", "g4")

	result := BuildSeries(SeriesInput{
		Measure: m,
		XAxis:   findGroup(groups, "fy"),
		Groups:  []*FilterGroup{findGroup(groups, "fr"), findGroup(groups, "fg")},
		Rows:    NewSliceView(rows),
		Filters: testFilters,
	})
	assert.Len(t, result.Series, 2+2*3)
	assert.Equal(t, GraphStackedColumn, result.GraphType)
}

func TestBuildSeriesBaseline(t *testing.T) {
	m := catalog.Measure{
		ID: "mt", Name: "Total allowance", Filters: []string{"fy"},
		BlockedFilters: [][]string{{"fr", "fg"}},
		XAxis:          "fy", Value: "value", GraphType: "line",
	}
	rows := []Row{
		{"year": "2020", "value": 100.0},
		{"year": "2020", "region": "A", "value": 60.0},
		{"year": "2020", "gender": "F", "value": 40.0},
		{"year": "2021", "value": 120.0},
	}

	graph := buildFor(m, groupsFor(m, rows), rows, false)
	require.NotNil(t, graph)
	require.Len(t, graph.Series, 1)
	assert.Equal(t, "Total allowance", graph.Series[0].Name)
	assert.Equal(t, []float64{100, 120}, graph.Series[0].Data)
	assert.Equal(t, DefaultPalette[0], graph.Series[0].Color)
	assert.Equal(t, "line", graph.Type)
}

func TestBuildSeriesNoCheckedLabelsWithFilters(t *testing.T) {
	m := benefitMeasure()
	groups := groupsFor(m, benefitRows)
	checkAll(findGroup(groups, "fr"), false)

	graph := buildFor(m, groups, benefitRows, false)
	require.NotNil(t, graph)
	assert.Empty(t, graph.Series)
}

func TestBuildSeriesRate(t *testing.T) {
	m := catalog.Measure{
		ID: "mr", Name: "Rate", Filters: []string{"fy"},
		XAxis: "fy", Value: "value",
	}
	rows := []Row{
		{"year": "2020", "value": 0.5},
		{"year": "2020", "value": 0.25},
		{"year": "2021", "value": 40.5},
		{"year": "2021", "value": 50.5},
	}
	rate := IsRate(NewSliceView(rows), "value")
	require.True(t, rate)

	graph := buildFor(m, groupsFor(m, rows), rows, rate)
	require.Len(t, graph.Series, 1)
	assert.InDeltaSlice(t, []float64{37.5, 45.5}, graph.Series[0].Data, 1e-9)
}

func TestBuildSeriesNotReady(t *testing.T) {
	m := benefitMeasure()
	groups := groupsFor(m, benefitRows)

	result := BuildSeries(SeriesInput{
		Measure: m,
		XAxis:   findGroup(groups, "fy"),
		Groups:  groups[1:],
		Filters: testFilters,
	})
	assert.Empty(t, result.Series)

	assert.Nil(t, BuildGraph(GraphInput{Measure: catalog.Measure{XAxis: "zz"}, Groups: groups}))
}

func TestBaselineExcludedColumns(t *testing.T) {
	m := catalog.Measure{
		ID: "m", Filters: []string{"fy", "fr", "fg", "fa"},
		BlockedFilters: [][]string{{"fr", "fg"}, {"fa", "fy"}},
		XAxis:          "fy",
	}
	groups := groupsFor(m, benefitRows)
	xAxis, rest := SplitXAxis(m, groups)

	assert.Equal(t, []string{"gender"}, BaselineExcludedColumns(m, xAxis, rest, testFilters))
	assert.Equal(t, []string{"region", "gender", "age"}, BaselineExcludedColumns(m, xAxis, nil, testFilters))
}
