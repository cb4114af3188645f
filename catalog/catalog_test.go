package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlockedFilters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want [][]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "flat list", raw: "f1, f2", want: [][]string{{"f1", "f2"}}},
		{name: "single group", raw: "[f1, f2]", want: [][]string{{"f1", "f2"}}},
		{name: "two groups", raw: "[f1, f2], [f3, f4]", want: [][]string{{"f1", "f2"}, {"f3", "f4"}}},
		{name: "stray bracket", raw: "[f1, f2, f3", want: [][]string{{"f1", "f2", "f3"}}},
		{name: "whitespace only", raw: "   ", want: nil},
		{name: "empty group dropped", raw: "[], [f5]", want: [][]string{{"f5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBlockedFilters(tt.raw))
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"M1", "M2"}, ParseList("(M1, M2)"))
	assert.Equal(t, []string{"a", "b"}, ParseList("a,,b, "))
	assert.Nil(t, ParseList(""))
}

func TestDecodeMeasures(t *testing.T) {
	records := []Record{
		{
			"Measure ID":              "M10",
			"Measure Name":            "Recipients",
			"Category_ID":             "DEM01",
			"Filters":                 "F1, F2, F3",
			"Blocked Filters":         "[F2, F3]",
			"Measure_Relations":       "M11",
			"Graph":                   "column",
			"X Axis Default":          "F1",
			"Y Axis Default":          "",
			"Default Value Attribute": "value",
		},
		{"Measure Name": "no id"},
	}

	measures := DecodeMeasures(records)
	require.Len(t, measures, 1)

	m := measures[0]
	assert.Equal(t, "M10", m.ID)
	assert.Equal(t, []string{"F1", "F2", "F3"}, m.Filters)
	assert.Equal(t, [][]string{{"F2", "F3"}}, m.BlockedFilters)
	assert.Equal(t, []string{"M11"}, m.Relations)
	assert.Equal(t, "F1", m.XAxis)
	assert.Equal(t, "value", m.Value)
	assert.True(t, m.HasFilter("F2"))
	assert.False(t, m.HasFilter("F9"))
}

func TestDecodeFiltersAndChips(t *testing.T) {
	filters := DecodeFilters([]Record{
		{"Filter_ID": "F1", "Filter_Name": "Year", "DB_Attributes": "year"},
		{"Filter_ID": 7.0, "Filter_Name": "Numeric id", "DB_Attributes": "n"},
		{"Filter_Name": "missing id"},
	})
	require.Len(t, filters, 2)
	assert.Equal(t, "7", filters[1].ID)

	chips := DecodeChips([]Record{
		{"Chip_ID": "C1", "Chip_Name": "Overview", "Measure ID": "M1,M2", "Filter_ID": "F2", "Category_ID": "DEM01"},
		{"Chip_ID": "C2", "Chip_Name": "No filter", "Measure ID": "M1"},
		{"Chip_ID": "C3", "Measure ID": []any{"M3"}, "Filter_ID": []any{"F1", "[F2]"}},
	})
	require.Len(t, chips, 2)
	assert.Equal(t, []string{"M1", "M2"}, chips[0].MeasureIDs)
	assert.Equal(t, []string{"F1", "F2"}, chips[1].FilterIDs)
}

func TestFilterCatalog(t *testing.T) {
	c := NewFilterCatalog([]Filter{
		{ID: "F1", Name: "Year", ColumnKey: "year"},
		{ID: "F2", Name: "Region", ColumnKey: "region"},
	})

	assert.Equal(t, "region", c.ColumnKey("F2"))
	assert.Equal(t, "Year", c.Name("F1"))
	assert.Equal(t, "", c.ColumnKey("nope"))
	assert.Equal(t, 2, c.Len())

	var nilCatalog *FilterCatalog
	_, ok := nilCatalog.Lookup("F1")
	assert.False(t, ok)
}

func TestMeasureCatalogRelated(t *testing.T) {
	c := NewMeasureCatalog([]Measure{
		{ID: "M1", CategoryID: "A", Relations: []string{"M2"}},
		{ID: "M2", CategoryID: "A"},
		{ID: "M3", CategoryID: "B"},
		{ID: "M1", CategoryID: "dup"},
	})

	// only M1 declares the relation; it holds from either side
	assert.True(t, c.Related("M1", "M2"))
	assert.True(t, c.Related("M2", "M1"), "relation declared on one side only")
	assert.False(t, c.Related("M2", "M2"))
	assert.False(t, c.Related("M1", "M3"))
	assert.False(t, c.Related("M1", "missing"))
	assert.Len(t, c.ForCategory("A"), 2)
	assert.Len(t, c.All(), 3)

	m, ok := c.Lookup("M1")
	require.True(t, ok)
	assert.Equal(t, "A", m.CategoryID)
}
