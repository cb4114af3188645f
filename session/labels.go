package session

import (
	"github.com/spektr-org/statboard/engine"
)

// ============================================================================
// LABEL INTERACTION — toggles, select-all, search, reset
// ============================================================================
// Every mutator recomputes blocking for the affected measures and returns
// the refreshed graph (nil when nothing is selected). In Multi mode a label
// change is mirrored onto every active measure's group for the same filter.
// ============================================================================

// ToggleLabel flips one label. Unknown groups and labels are ignored, and
// so is checking a label of a disabled group.
func (s *Session) ToggleLabel(measureID, filterID, title string) *engine.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.groups.Get(measureID, filterID)
	l := g.Label(title)
	if l == nil {
		s.logger.Debug("toggle ignored", "measure", measureID, "filter", filterID, "label", title)
		return s.graph
	}
	checked := !l.Checked
	if checked && g.Filter.Disabled {
		s.logger.Debug("toggle ignored, filter disabled", "measure", measureID, "filter", filterID, "label", title)
		return s.graph
	}

	for _, target := range s.mirrored(measureID, filterID) {
		if checked && target.Filter.Disabled {
			continue
		}
		if tl := target.Label(title); tl != nil {
			tl.Checked = checked
		}
	}
	return s.refresh(measureID)
}

// SetAllLabels checks or unchecks every label of a group matching search
// (all labels when search is empty). Checking a disabled group is ignored.
func (s *Session) SetAllLabels(measureID, filterID, search string, checked bool) *engine.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.groups.Get(measureID, filterID)
	if g == nil || (checked && g.Filter.Disabled) {
		return s.graph
	}

	titles := make(map[string]bool)
	for _, l := range engine.SearchLabels(g, search) {
		titles[l.Title] = true
	}
	for _, target := range s.mirrored(measureID, filterID) {
		if checked && target.Filter.Disabled {
			continue
		}
		for _, l := range target.Filter.Labels {
			if titles[l.Title] {
				l.Checked = checked
			}
		}
	}
	return s.refresh(measureID)
}

// SearchLabels returns copies of the labels of a group whose title contains
// query.
func (s *Session) SearchLabels(measureID, filterID, query string) []engine.Label {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := engine.SearchLabels(s.groups.Get(measureID, filterID), query)
	out := make([]engine.Label, len(found))
	for i, l := range found {
		out[i] = *l
	}
	return out
}

// RecomputeBlocking refreshes the disabled flags of one measure and the
// graph.
func (s *Session) RecomputeBlocking(measureID string) *engine.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(measureID)
}

// ResetFilters unchecks every label of every loaded measure. Afterwards no
// group is disabled. A multi-measure chart falls back to its first measure,
// since charting several measures disables their unshared filters.
func (s *Session) ResetFilters() *engine.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.groups.UncheckAll()
	for _, m := range s.measures.All() {
		if groups := s.groups.ForMeasure(m.ID); len(groups) > 0 {
			engine.ResolveBlocking(m, groups)
		}
	}
	switch s.state {
	case StateNone:
		return nil
	case StateMulti:
		s.state = StateSingle
		s.active = []string{s.active[0]}
	}
	return s.recompute()
}

// ============================================================================
// HELPERS (callers hold mu)
// ============================================================================

// mirrored returns the groups a label change on (measureID, filterID)
// applies to: just that group, or in Multi mode the same filter of every
// active measure.
func (s *Session) mirrored(measureID, filterID string) []*engine.FilterGroup {
	g := s.groups.Get(measureID, filterID)
	if g == nil {
		return nil
	}
	if s.state != StateMulti || !contains(s.active, measureID) {
		return []*engine.FilterGroup{g}
	}
	out := []*engine.FilterGroup{g}
	for _, id := range s.active {
		if id == measureID {
			continue
		}
		if other := s.groups.Get(id, filterID); other != nil {
			out = append(out, other)
		}
	}
	return out
}

// refresh recomputes blocking for measureID and, when it is charted, the
// graph.
func (s *Session) refresh(measureID string) *engine.GraphData {
	if !contains(s.active, measureID) {
		if m, ok := s.measures.Lookup(measureID); ok {
			engine.ResolveBlocking(m, s.groups.ForMeasure(measureID))
		}
		return s.graph
	}
	return s.recompute()
}
