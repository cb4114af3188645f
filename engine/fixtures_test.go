package engine

import (
	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// TEST FIXTURES
// ============================================================================

var testFilters = catalog.NewFilterCatalog([]catalog.Filter{
	{ID: "fy", Name: "Year", ColumnKey: "year"},
	{ID: "fr", Name: "Region", ColumnKey: "region"},
	{ID: "fg", Name: "Gender", ColumnKey: "gender"},
	{ID: "fa", Name: "Age", ColumnKey: "age"},
	{ID: "fs", Name: "Sector", ColumnKey: "sector"},
	{ID: "fe", Name: "Education", ColumnKey: "education"},
})

// year × region × gender, integer values
var benefitRows = []Row{
	{"year": 2020.0, "region": "A", "gender": "M", "value": 10.0},
	{"year": 2020.0, "region": "A", "gender": "F", "value": 20.0},
	{"year": 2020.0, "region": "B", "gender": "M", "value": 5.0},
	{"year": 2021.0, "region": "A", "gender": "M", "value": 1.0},
	{"year": 2021.0, "region": "B", "gender": "F", "value": 7.0},
}

func benefitMeasure() catalog.Measure {
	return catalog.Measure{
		ID:         "m1",
		Name:       "Benefit recipients",
		CategoryID: "c1",
		Filters:    []string{"fy", "fr", "fg"},
		GraphType:  "column",
		XAxis:      "fy",
		Value:      "value",
	}
}

// groupsFor builds the measure's groups from rows.
func groupsFor(m catalog.Measure, rows []Row, opts ...Option) []*FilterGroup {
	return BuildFilterGroups(m, testFilters, NewSliceView(rows), opts...)
}

func findGroup(groups []*FilterGroup, filterID string) *FilterGroup {
	for _, g := range groups {
		if g.Filter.ID == filterID {
			return g
		}
	}
	return nil
}

func checkAll(g *FilterGroup, checked bool) {
	for _, l := range g.Filter.Labels {
		l.Checked = checked
	}
}

func checkOnly(g *FilterGroup, titles ...string) {
	want := make(map[string]bool, len(titles))
	for _, t := range titles {
		want[t] = true
	}
	for _, l := range g.Filter.Labels {
		l.Checked = want[l.Title]
	}
}

func labelTitles(labels []*Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Title
	}
	return out
}

func seriesNames(series []Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Name
	}
	return out
}
