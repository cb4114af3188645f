package engine

import (
	"github.com/spektr-org/statboard/catalog"
)

// GraphInput is the single-measure counterpart of MultiInput.
type GraphInput struct {
	Measure catalog.Measure
	Groups  []*FilterGroup // all groups of the measure, x-axis included
	Rows    RowView
	Filters *catalog.FilterCatalog
	Rate    bool
}

// BuildGraph assembles the GraphData of one measure. It returns nil when the
// measure has no x-axis group. Rows not yet loaded produce a graph without
// series.
func BuildGraph(in GraphInput, opts ...Option) *GraphData {
	xAxis, rest := SplitXAxis(in.Measure, in.Groups)
	if xAxis == nil {
		return nil
	}

	result := BuildSeries(SeriesInput{
		Measure: in.Measure,
		XAxis:   xAxis,
		Groups:  rest,
		Rows:    in.Rows,
		Filters: in.Filters,
		Rate:    in.Rate,
	}, opts...)

	return &GraphData{
		CategoryID:   in.Measure.CategoryID,
		Title:        in.Measure.Name,
		Type:         result.GraphType,
		Categories:   xAxis,
		Series:       result.Series,
		FilterGroups: in.Groups,
		MeasureIDs:   []string{in.Measure.ID},
	}
}
