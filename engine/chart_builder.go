package engine

import (
	"strings"

	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// CHART BUILDER — Produces Series from a measure + its filter groups
// ============================================================================
// Case A: exactly two active series groups (F1, F2)
//   per checked L1: plain series L1, then per checked L2 a series stacked
//   under L1 → m + m*n series, graph type forced to stacked-column.
// Case B: zero or one active series group
//   no checked series labels and only the x-axis group → one baseline
//   series named after the measure; otherwise one series per checked label.
//
// Every series carries one value per x-axis label, in label order.
// ============================================================================

// SeriesInput is everything BuildSeries reads. Rows nil means not loaded.
type SeriesInput struct {
	Measure catalog.Measure
	XAxis   *FilterGroup
	Groups  []*FilterGroup // series filter groups (x-axis excluded)
	Rows    RowView
	Filters *catalog.FilterCatalog
	Rate    bool
}

// BuildSeries produces the series of a single measure and the effective
// graph type. Missing rows or x-axis yield no series.
func BuildSeries(in SeriesInput, opts ...Option) SeriesResult {
	result := SeriesResult{GraphType: in.Measure.GraphType}
	if in.Rows == nil || in.XAxis == nil {
		return result
	}
	cfg := applyOptions(opts)

	active := activeGroups(in.XAxis, in.Groups)
	if len(active) == 2 {
		result.Series = buildStackedSeries(in, active[0], active[1], cfg)
		result.GraphType = GraphStackedColumn
		return result
	}

	var labels []*Label
	var owners []*FilterGroup
	for _, g := range active {
		for _, l := range g.CheckedLabels() {
			labels = append(labels, l)
			owners = append(owners, g)
		}
	}

	if len(labels) == 0 && len(seriesOnly(in.XAxis, in.Groups)) == 0 {
		result.Series = []Series{{
			Name:       in.Measure.Name,
			GroupTitle: in.Measure.Name,
			Data:       baselineValues(in, cfg),
			Color:      cfg.color(0),
		}}
		return result
	}

	agg := AggregationFor(in.Rate)
	xColumn := in.XAxis.Filter.ColumnKey
	result.Series = make([]Series, 0, len(labels))
	for k, l := range labels {
		g := owners[k]
		matched := Match(in.Rows, Condition{Column: g.Filter.ColumnKey, Value: l.Title})
		result.Series = append(result.Series, Series{
			Name:       l.Title,
			GroupTitle: g.Filter.Name,
			Data:       seriesValues(matched, xColumn, in.XAxis.Filter.Labels, in.Measure.Value, agg, cfg),
			Color:      cfg.color(k + 1),
		})
	}
	return result
}

func buildStackedSeries(in SeriesInput, f1, f2 *FilterGroup, cfg *config) []Series {
	agg := AggregationFor(in.Rate)
	xColumn := in.XAxis.Filter.ColumnKey
	categories := in.XAxis.Filter.Labels
	first := f1.CheckedLabels()
	second := f2.CheckedLabels()

	series := make([]Series, 0, len(first)+len(first)*len(second))
	for i, l1 := range first {
		byFirst := Match(in.Rows, Condition{Column: f1.Filter.ColumnKey, Value: l1.Title})
		series = append(series, Series{
			Name:       l1.Title,
			GroupTitle: f1.Filter.Name,
			Data:       seriesValues(byFirst, xColumn, categories, in.Measure.Value, agg, cfg),
			Color:      cfg.color(i),
		})

		for j, l2 := range second {
			bySecond := Match(byFirst, Condition{Column: f2.Filter.ColumnKey, Value: l2.Title})
			series = append(series, Series{
				Name:       l2.Title,
				Stack:      l1.Title,
				GroupTitle: f2.Filter.Name,
				Data:       seriesValues(bySecond, xColumn, categories, in.Measure.Value, agg, cfg),
				Color:      cfg.color(len(first) + j),
			})
		}
	}
	return series
}

// ============================================================================
// BASELINE — measure total with blocked columns excluded
// ============================================================================

// baselineValues aggregates over the x-axis alone, dropping rows that carry a
// value in any blocked column.
func baselineValues(in SeriesInput, cfg *config) []float64 {
	rows := Exclude(in.Rows, BaselineExcludedColumns(in.Measure, in.XAxis, in.Groups, in.Filters))
	return seriesValues(rows, in.XAxis.Filter.ColumnKey, in.XAxis.Filter.Labels, in.Measure.Value, AggregationFor(in.Rate), cfg)
}

// BaselineExcludedColumns resolves the columns whose non-empty values remove a
// row from the measure total. With a series filter present, only the blocking
// groups naming the first one count and that filter itself stays; without
// one, every blocked filter counts. The x-axis column is never excluded.
func BaselineExcludedColumns(m catalog.Measure, xAxis *FilterGroup, groups []*FilterGroup, filters *catalog.FilterCatalog) []string {
	var xColumn string
	if xAxis != nil {
		xColumn = xAxis.Filter.ColumnKey
	}

	var anchor string
	for _, g := range groups {
		if g != xAxis && g.Filter.ColumnKey != xColumn {
			anchor = g.Filter.ID
			break
		}
	}

	var ids []string
	if anchor == "" {
		ids = m.BlockedIDs()
	} else {
		for _, block := range m.BlockedFilters {
			if containsID(block, anchor) {
				ids = append(ids, block...)
			}
		}
	}

	seen := make(map[string]bool)
	var columns []string
	for _, raw := range ids {
		id := strings.Trim(raw, "[]")
		if id == anchor {
			continue
		}
		col := filters.ColumnKey(id)
		if col == "" || col == xColumn || seen[col] {
			continue
		}
		seen[col] = true
		columns = append(columns, col)
	}
	return columns
}

// ============================================================================
// HELPERS
// ============================================================================

// activeGroups returns the series groups with at least one checked label,
// in declaration order.
func activeGroups(xAxis *FilterGroup, groups []*FilterGroup) []*FilterGroup {
	var out []*FilterGroup
	for _, g := range seriesOnly(xAxis, groups) {
		if g.IsActive() {
			out = append(out, g)
		}
	}
	return out
}

func seriesOnly(xAxis *FilterGroup, groups []*FilterGroup) []*FilterGroup {
	out := make([]*FilterGroup, 0, len(groups))
	for _, g := range groups {
		if g == nil || g == xAxis {
			continue
		}
		if xAxis != nil && g.MeasureID == xAxis.MeasureID && g.Filter.ID == xAxis.Filter.ID {
			continue
		}
		out = append(out, g)
	}
	return out
}

func containsID(block []string, id string) bool {
	for _, raw := range block {
		if strings.Trim(raw, "[]") == id {
			return true
		}
	}
	return false
}
