package engine

import (
	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// STATBOARD ENGINE TYPES — Filter-to-Series Aggregation
// ============================================================================
// Row          — one raw data row of a measure's view (column → value)
// Label        — one distinct value of a filter column + selection state
// FilterGroup  — one (measure, filter) pair with its labels
// Series       — one numeric series, one value per x-axis label
// GraphData    — the render-ready snapshot handed to the chart collaborator
//
// Dependency: engine only reads already-fetched rows. No I/O.
// ============================================================================

// Graph types understood by the renderer.
const (
	GraphStackedColumn = "stacked-column"
	GraphLine          = "line"
)

// Row is a single data row. Values are strings or float64 (JSON numbers).
type Row map[string]any

// Label is one distinct value of a filter column.
type Label struct {
	Title   string    `json:"title"`
	Values  []float64 `json:"values"` // unused cache slot kept for payload compatibility
	Checked bool      `json:"checked"`
}

// FilterState is a filter plus its per-measure UI state.
type FilterState struct {
	catalog.Filter
	Labels   []*Label `json:"labels"`
	Disabled bool     `json:"disabled"`
	Expanded bool     `json:"expanded"`
}

// FilterGroup binds a filter to a measure.
type FilterGroup struct {
	MeasureID string      `json:"measureId"`
	Title     string      `json:"title"`
	Expanded  bool        `json:"expanded"`
	Filter    FilterState `json:"filter"`
}

// CheckedLabels returns the checked labels in label order.
func (g *FilterGroup) CheckedLabels() []*Label {
	if g == nil {
		return nil
	}
	var out []*Label
	for _, l := range g.Filter.Labels {
		if l.Checked {
			out = append(out, l)
		}
	}
	return out
}

// IsActive reports whether at least one label is checked.
func (g *FilterGroup) IsActive() bool {
	if g == nil {
		return false
	}
	for _, l := range g.Filter.Labels {
		if l.Checked {
			return true
		}
	}
	return false
}

// Label returns the label with the given title.
func (g *FilterGroup) Label(title string) *Label {
	if g == nil {
		return nil
	}
	for _, l := range g.Filter.Labels {
		if l.Title == title {
			return l
		}
	}
	return nil
}

// Clone returns a deep copy, so snapshots never alias live UI state.
func (g *FilterGroup) Clone() *FilterGroup {
	if g == nil {
		return nil
	}
	c := *g
	c.Filter.Labels = make([]*Label, len(g.Filter.Labels))
	for i, l := range g.Filter.Labels {
		lc := *l
		lc.Values = append([]float64(nil), l.Values...)
		c.Filter.Labels[i] = &lc
	}
	return &c
}

// Series is one chart series. Data holds one value per x-axis label.
type Series struct {
	Name       string    `json:"name"`
	Data       []float64 `json:"data"`
	Color      string    `json:"color,omitempty"`
	Stack      string    `json:"stack,omitempty"`
	GroupTitle string    `json:"groupTitle,omitempty"`
}

// GraphData is the aggregate output consumed by the renderer.
// Produced fresh on every recomputation.
type GraphData struct {
	CategoryID   string         `json:"categoryId"`
	Title        string         `json:"title"`
	Type         string         `json:"type"`
	Description  string         `json:"description,omitempty"`
	Categories   *FilterGroup   `json:"categories"`
	Series       []Series       `json:"series"`
	FilterGroups []*FilterGroup `json:"filterGroups"`
	MeasureIDs   []string       `json:"measureIds,omitempty"`
}

// CheckedCategories returns the titles of the checked x-axis labels.
func (g *GraphData) CheckedCategories() []string {
	if g == nil || g.Categories == nil {
		return nil
	}
	var titles []string
	for _, l := range g.Categories.CheckedLabels() {
		titles = append(titles, l.Title)
	}
	return titles
}

// SeriesResult is the output of BuildSeries.
type SeriesResult struct {
	Series    []Series
	GraphType string
}
