package engine

import (
	"strings"
)

// ============================================================================
// GROUP SET — FilterGroups owned by (measureID, filterID)
// ============================================================================
// Keeps insertion order for rendering and guarantees one group per filter
// per measure. Not safe for concurrent use; the session serializes access.
// ============================================================================

type groupKey struct {
	measureID string
	filterID  string
}

// GroupSet owns the filter groups of every loaded measure.
type GroupSet struct {
	order []groupKey
	byKey map[groupKey]*FilterGroup
}

// NewGroupSet returns an empty set.
func NewGroupSet() *GroupSet {
	return &GroupSet{byKey: make(map[groupKey]*FilterGroup)}
}

// Put stores g, replacing any group with the same (measure, filter) in place.
func (s *GroupSet) Put(g *FilterGroup) {
	if g == nil {
		return
	}
	k := groupKey{g.MeasureID, g.Filter.ID}
	if _, exists := s.byKey[k]; !exists {
		s.order = append(s.order, k)
	}
	s.byKey[k] = g
}

// ReplaceMeasure swaps every group of measureID for groups.
func (s *GroupSet) ReplaceMeasure(measureID string, groups []*FilterGroup) {
	s.RemoveMeasure(measureID)
	for _, g := range groups {
		if g != nil && g.MeasureID == measureID {
			s.Put(g)
		}
	}
}

// RemoveMeasure drops every group of measureID.
func (s *GroupSet) RemoveMeasure(measureID string) {
	kept := s.order[:0]
	for _, k := range s.order {
		if k.measureID == measureID {
			delete(s.byKey, k)
			continue
		}
		kept = append(kept, k)
	}
	s.order = kept
}

// Get returns the group of (measureID, filterID), or nil.
func (s *GroupSet) Get(measureID, filterID string) *FilterGroup {
	return s.byKey[groupKey{measureID, filterID}]
}

// ForMeasure returns the groups of measureID in insertion order.
func (s *GroupSet) ForMeasure(measureID string) []*FilterGroup {
	var out []*FilterGroup
	for _, k := range s.order {
		if k.measureID == measureID {
			out = append(out, s.byKey[k])
		}
	}
	return out
}

// ForFilter returns every measure's group for filterID.
func (s *GroupSet) ForFilter(filterID string) []*FilterGroup {
	var out []*FilterGroup
	for _, k := range s.order {
		if k.filterID == filterID {
			out = append(out, s.byKey[k])
		}
	}
	return out
}

// All returns every group in insertion order.
func (s *GroupSet) All() []*FilterGroup {
	out := make([]*FilterGroup, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// Len returns the number of groups.
func (s *GroupSet) Len() int { return len(s.order) }

// Reset drops every group.
func (s *GroupSet) Reset() {
	s.order = nil
	s.byKey = make(map[groupKey]*FilterGroup)
}

// UncheckAll clears every label of every group.
func (s *GroupSet) UncheckAll() {
	for _, g := range s.byKey {
		for _, l := range g.Filter.Labels {
			l.Checked = false
		}
	}
}

// ============================================================================
// LABEL SEARCH
// ============================================================================

// SearchLabels returns the labels of g whose title contains query,
// case-insensitively. An empty query returns every label.
func SearchLabels(g *FilterGroup, query string) []*Label {
	if g == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return g.Filter.Labels
	}
	var out []*Label
	for _, l := range g.Filter.Labels {
		if strings.Contains(strings.ToLower(l.Title), q) {
			out = append(out, l)
		}
	}
	return out
}
