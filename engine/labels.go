package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/statboard/catalog"
	"golang.org/x/text/collate"
)

// ============================================================================
// LABEL DERIVER — Distinct column values → sorted, pre-checked labels
// ============================================================================
// One pass over the view collects distinct non-empty values of the filter's
// column. Sorting is numeric when both titles parse as numbers, otherwise a
// digit-aware collation for the configured locale ("שנה 2" < "שנה 10").
// ============================================================================

// DeriveLabels builds the label set of one filter for one measure's rows.
// A nil view returns an empty slice: the caller must treat it as not ready.
func DeriveLabels(view RowView, filter catalog.Filter, isDefaultAxis bool, opts ...Option) []*Label {
	if view == nil || filter.ColumnKey == "" {
		return []*Label{}
	}
	cfg := applyOptions(opts)

	seen := make(map[string]bool)
	titles := make([]string, 0)
	for i := 0; i < view.Len(); i++ {
		title := view.Text(i, filter.ColumnKey)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}

	SortTitles(titles, opts...)

	labels := make([]*Label, len(titles))
	for i, title := range titles {
		labels[i] = &Label{
			Title:   title,
			Values:  []float64{},
			Checked: isDefaultAxis,
		}
	}

	if len(labels) > cfg.DefaultTopN {
		for i, l := range labels {
			l.Checked = isDefaultAxis && i < cfg.DefaultTopN
		}
	}
	return labels
}

// SortTitles sorts label titles in place: numerically when both parse,
// otherwise by locale collation with numeric ordering of digit runs.
func SortTitles(titles []string, opts ...Option) {
	cfg := applyOptions(opts)
	col := collate.New(cfg.Locale, collate.Numeric)

	sort.SliceStable(titles, func(i, j int) bool {
		return compareTitles(col, titles[i], titles[j]) < 0
	})
}

func compareTitles(col *collate.Collator, a, b string) int {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return strings.Compare(a, b)
	}
	if c := col.CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// ============================================================================
// DEFAULT AXES
// ============================================================================

// DefaultYAxisColumn resolves the column whose labels start checked besides
// the x-axis. A declared y-axis may be a filter id or a column key; when the
// measure declares none, the first declared filter reading a different column
// than the x-axis is used.
func DefaultYAxisColumn(m catalog.Measure, filters *catalog.FilterCatalog) string {
	xColumn := filters.ColumnKey(m.XAxis)
	if m.YAxis != "" {
		if col := filters.ColumnKey(m.YAxis); col != "" {
			return col
		}
		return m.YAxis
	}
	for _, id := range m.Filters {
		col := filters.ColumnKey(id)
		if col != "" && col != xColumn {
			return col
		}
	}
	return ""
}

// IsDefaultAxis reports whether a filter's labels start checked for m.
func IsDefaultAxis(m catalog.Measure, filter catalog.Filter, filters *catalog.FilterCatalog) bool {
	if filter.ID == m.XAxis {
		return true
	}
	if filter.ColumnKey == "" {
		return false
	}
	if filter.ColumnKey == filters.ColumnKey(m.XAxis) {
		return true
	}
	return filter.ColumnKey == DefaultYAxisColumn(m, filters)
}

// ============================================================================
// FILTER GROUPS
// ============================================================================

// BuildFilterGroups creates one group per declared filter of m, in
// declaration order. Duplicate and unknown filter ids are skipped. Labels are
// derived from view; a nil view yields groups without labels.
func BuildFilterGroups(m catalog.Measure, filters *catalog.FilterCatalog, view RowView, opts ...Option) []*FilterGroup {
	seen := make(map[string]bool, len(m.Filters))
	groups := make([]*FilterGroup, 0, len(m.Filters))

	for _, id := range m.Filters {
		if seen[id] {
			continue
		}
		f, ok := filters.Lookup(id)
		if !ok {
			continue
		}
		seen[id] = true

		isDefault := IsDefaultAxis(m, f, filters)
		groups = append(groups, &FilterGroup{
			MeasureID: m.ID,
			Title:     f.Name,
			Expanded:  isDefault,
			Filter: FilterState{
				Filter:   f,
				Labels:   DeriveLabels(view, f, isDefault, opts...),
				Expanded: isDefault,
			},
		})
	}
	return groups
}

// SplitXAxis separates the x-axis group of m from its series filter groups.
func SplitXAxis(m catalog.Measure, groups []*FilterGroup) (*FilterGroup, []*FilterGroup) {
	var xAxis *FilterGroup
	rest := make([]*FilterGroup, 0, len(groups))
	for _, g := range groups {
		if xAxis == nil && g.Filter.ID == m.XAxis {
			xAxis = g
			continue
		}
		rest = append(rest, g)
	}
	return xAxis, rest
}
