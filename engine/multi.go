package engine

import (
	"fmt"

	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// MULTI-MEASURE SYNCHRONIZER — Related measures on one chart
// ============================================================================
// Only filters common to every measure stay usable; the rest are disabled.
// Each measure contributes a total series ("measure 1", "measure 2", …).
// When exactly one shared non-x-axis filter has checked labels, each measure
// also gets a stacked cluster with one series per checked label.
// ============================================================================

// MultiInput is everything BuildMultiMeasure reads, keyed by measure id.
type MultiInput struct {
	Measures []catalog.Measure
	Groups   map[string][]*FilterGroup
	Rows     map[string]RowView
	Rates    map[string]bool
	Filters  *catalog.FilterCatalog
}

// BuildMultiMeasure combines several measures into one GraphData. Measures
// without groups or rows are dropped; a single survivor takes the
// single-measure path, none yields nil.
func BuildMultiMeasure(in MultiInput, opts ...Option) *GraphData {
	cfg := applyOptions(opts)

	var measures []catalog.Measure
	for _, m := range in.Measures {
		if len(in.Groups[m.ID]) == 0 || in.Rows[m.ID] == nil {
			continue
		}
		measures = append(measures, m)
	}

	switch len(measures) {
	case 0:
		return nil
	case 1:
		return BuildGraph(GraphInput{
			Measure: measures[0],
			Groups:  in.Groups[measures[0].ID],
			Rows:    in.Rows[measures[0].ID],
			Filters: in.Filters,
			Rate:    in.Rates[measures[0].ID],
		}, opts...)
	}

	shared := SharedFilterIDs(measures, in.Groups)
	DisableUnshared(measures, in.Groups, shared)

	first := measures[0]
	categories, _ := SplitXAxis(first, in.Groups[first.ID])
	if categories == nil {
		return nil
	}

	breakdown := sharedBreakdownFilter(first, in.Groups[first.ID], shared)
	graphType := first.GraphType
	if breakdown != "" {
		graphType = GraphStackedColumn
	}

	var series []Series
	var all []*FilterGroup
	var ids []string
	colorIndex := 0
	for idx, m := range measures {
		groups := in.Groups[m.ID]
		all = append(all, groups...)
		ids = append(ids, m.ID)

		xAxis, rest := SplitXAxis(m, groups)
		if xAxis == nil {
			continue
		}
		xColumn := xAxis.Filter.ColumnKey
		rows := in.Rows[m.ID]
		agg := AggregationFor(in.Rates[m.ID])
		name := fmt.Sprintf(cfg.MeasureLabel, idx+1)

		total := Exclude(rows, BaselineExcludedColumns(m, xAxis, rest, in.Filters))
		series = append(series, Series{
			Name:       name,
			GroupTitle: m.Name,
			Data:       seriesValues(total, xColumn, categories.Filter.Labels, m.Value, agg, cfg),
			Color:      cfg.color(colorIndex),
		})
		colorIndex++

		if breakdown == "" {
			continue
		}
		g := groupByFilter(groups, breakdown)
		for _, l := range g.CheckedLabels() {
			matched := Match(rows, Condition{Column: g.Filter.ColumnKey, Value: l.Title})
			series = append(series, Series{
				Name:       fmt.Sprintf("%s %s", name, l.Title),
				Stack:      name,
				GroupTitle: g.Filter.Name,
				Data:       seriesValues(matched, xColumn, categories.Filter.Labels, m.Value, agg, cfg),
				Color:      cfg.color(colorIndex),
			})
			colorIndex++
		}
	}

	return &GraphData{
		CategoryID:   first.CategoryID,
		Title:        first.Name,
		Type:         graphType,
		Categories:   categories,
		Series:       series,
		FilterGroups: all,
		MeasureIDs:   ids,
	}
}

// SharedFilterIDs intersects the filter ids of every measure's groups,
// keeping the first measure's order.
func SharedFilterIDs(measures []catalog.Measure, groups map[string][]*FilterGroup) []string {
	if len(measures) == 0 {
		return nil
	}
	var shared []string
	for _, g := range groups[measures[0].ID] {
		id := g.Filter.ID
		inAll := true
		for _, m := range measures[1:] {
			if groupByFilter(groups[m.ID], id) == nil {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, id)
		}
	}
	return shared
}

// DisableUnshared marks every group whose filter is not shared as disabled.
func DisableUnshared(measures []catalog.Measure, groups map[string][]*FilterGroup, shared []string) {
	keep := make(map[string]bool, len(shared))
	for _, id := range shared {
		keep[id] = true
	}
	for _, m := range measures {
		for _, g := range groups[m.ID] {
			if !keep[g.Filter.ID] {
				g.Filter.Disabled = true
			}
		}
	}
}

// sharedBreakdownFilter returns the one shared non-x-axis filter with checked
// labels, or "" when there are none or several.
func sharedBreakdownFilter(first catalog.Measure, groups []*FilterGroup, shared []string) string {
	var found string
	n := 0
	for _, id := range shared {
		if id == first.XAxis {
			continue
		}
		if g := groupByFilter(groups, id); g.IsActive() {
			found = id
			n++
		}
	}
	if n != 1 {
		return ""
	}
	return found
}

func groupByFilter(groups []*FilterGroup, filterID string) *FilterGroup {
	for _, g := range groups {
		if g != nil && g.Filter.ID == filterID {
			return g
		}
	}
	return nil
}
