// Package catalog holds the static metadata of the dashboard: which filters
// exist, which column each one reads, and how every measure is wired to them.
package catalog

// ============================================================================
// CATALOG — Filter and measure metadata
// ============================================================================
// Loaded once from the statistics API (dimFilters, layersMeasures, categories,
// chips). Read-only after load; no logic beyond lookup and normalization.
// ============================================================================

// Filter maps a human filter to the row column it reads.
type Filter struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	ColumnKey string `json:"columnKey" yaml:"columnKey"`
}

// Measure describes one chartable statistic and how its filters behave.
type Measure struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`

	Filters        []string   `json:"filters"`        // filter ids, declaration order
	BlockedFilters [][]string `json:"blockedFilters"` // canonical: list of groups
	Relations      []string   `json:"relations"`      // related measure ids

	GraphType string `json:"graphType"`
	XAxis     string `json:"xAxis"` // filter id
	YAxis     string `json:"yAxis"` // filter id or column key, may be empty
	Value     string `json:"value"` // column key holding the numeric value
}

// HasFilter reports whether the measure declares the filter id.
func (m Measure) HasFilter(filterID string) bool {
	for _, id := range m.Filters {
		if id == filterID {
			return true
		}
	}
	return false
}

// BlockedIDs returns every id mentioned in any blocking group, de-duplicated.
func (m Measure) BlockedIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, group := range m.BlockedFilters {
		for _, id := range group {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Category is a dashboard topic grouping several measures.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ChipIDs     []string `json:"chipIds,omitempty"`
}

// Chip is a preset view: one or more measures with pre-selected filters.
type Chip struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CategoryID  string   `json:"categoryId"`
	MeasureIDs  []string `json:"measureIds"`
	FilterIDs   []string `json:"filterIds"`
}

// ============================================================================
// FILTER CATALOG
// ============================================================================

// FilterCatalog is an id-indexed set of filters.
type FilterCatalog struct {
	order []string
	byID  map[string]Filter
}

// NewFilterCatalog indexes filters by id. Later duplicates win.
func NewFilterCatalog(filters []Filter) *FilterCatalog {
	c := &FilterCatalog{byID: make(map[string]Filter, len(filters))}
	for _, f := range filters {
		if _, exists := c.byID[f.ID]; !exists {
			c.order = append(c.order, f.ID)
		}
		c.byID[f.ID] = f
	}
	return c
}

// Lookup returns the filter with the given id.
func (c *FilterCatalog) Lookup(id string) (Filter, bool) {
	if c == nil {
		return Filter{}, false
	}
	f, ok := c.byID[id]
	return f, ok
}

// ColumnKey returns the row column read by the filter, or "" when unknown.
func (c *FilterCatalog) ColumnKey(id string) string {
	f, _ := c.Lookup(id)
	return f.ColumnKey
}

// Name returns the display name of the filter, or "" when unknown.
func (c *FilterCatalog) Name(id string) string {
	f, _ := c.Lookup(id)
	return f.Name
}

// All returns the filters in load order.
func (c *FilterCatalog) All() []Filter {
	if c == nil {
		return nil
	}
	out := make([]Filter, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of known filters.
func (c *FilterCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// ============================================================================
// MEASURE CATALOG
// ============================================================================

// MeasureCatalog is an ordered, id-indexed set of measures.
type MeasureCatalog struct {
	measures []Measure
	byID     map[string]int
}

// NewMeasureCatalog indexes measures by id, keeping the first occurrence.
func NewMeasureCatalog(measures []Measure) *MeasureCatalog {
	c := &MeasureCatalog{byID: make(map[string]int, len(measures))}
	for _, m := range measures {
		if _, exists := c.byID[m.ID]; exists {
			continue
		}
		c.byID[m.ID] = len(c.measures)
		c.measures = append(c.measures, m)
	}
	return c
}

// Lookup returns the measure with the given id.
func (c *MeasureCatalog) Lookup(id string) (Measure, bool) {
	if c == nil {
		return Measure{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Measure{}, false
	}
	return c.measures[i], true
}

// All returns the measures in load order.
func (c *MeasureCatalog) All() []Measure {
	if c == nil {
		return nil
	}
	return append([]Measure(nil), c.measures...)
}

// ForCategory returns the measures belonging to a category.
func (c *MeasureCatalog) ForCategory(categoryID string) []Measure {
	if c == nil {
		return nil
	}
	var out []Measure
	for _, m := range c.measures {
		if m.CategoryID == categoryID {
			out = append(out, m)
		}
	}
	return out
}

// Related reports whether either measure lists the other as a relation.
// Unknown ids are never related.
func (c *MeasureCatalog) Related(a, b string) bool {
	ma, okA := c.Lookup(a)
	mb, okB := c.Lookup(b)
	if !okA || !okB || a == b {
		return false
	}
	return contains(ma.Relations, b) || contains(mb.Relations, a)
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
