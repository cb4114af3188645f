package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/spektr-org/statboard/catalog"
	"github.com/spektr-org/statboard/engine"
	"github.com/spektr-org/statboard/share"
)

// ============================================================================
// SELECTION — categories, measures, chips and share links
// ============================================================================
// Transitions of SelectMeasure(id):
//
//   id already active                        → None
//   Multi, id inactive                       → None
//   Single(other), related to id             → Multi(other, id)
//   otherwise                                → Single(id)
// ============================================================================

// activation describes a selection waiting for its rows.
type activation struct {
	gen        uint64
	categoryID string
	state      State
	ids        []string
	title      string
	desc       string
	prepare    func() // label edits applied once groups exist, under mu
}

// LoadCategory switches to a category: the selection is cleared, filter
// groups are dropped and the rows of every measure in the category are
// fetched. Measures whose rows fail to load get their groups on selection.
func (s *Session) LoadCategory(ctx context.Context, categoryID string) ([]catalog.Measure, error) {
	filters, measures, err := s.catalogs(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	if !hasCategory(categories, categoryID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	inCategory := measures.ForCategory(categoryID)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.filters, s.measures = filters, measures
	s.categoryID = categoryID
	s.groups.Reset()
	s.clearSelection()
	s.err = nil
	s.mu.Unlock()

	ids := make([]string, len(inCategory))
	for i, m := range inCategory {
		ids[i] = m.ID
	}
	if err := s.store.Prefetch(ctx, ids); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("category prefetch incomplete", "category", categoryID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil, ErrStale
	}
	for _, m := range inCategory {
		s.ensureGroups(m)
	}
	s.logger.Info("category loaded", "category", categoryID, "measures", len(inCategory))
	return inCategory, nil
}

// SelectMeasure applies one measure click and returns the refreshed graph,
// nil when the selection ends up empty.
func (s *Session) SelectMeasure(ctx context.Context, measureID string) (*engine.GraphData, error) {
	filters, measures, err := s.catalogs(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	m, ok := measures.Lookup(measureID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMeasure, measureID)
	}

	s.mu.Lock()
	s.filters, s.measures = filters, measures
	s.gen++
	act := activation{gen: s.gen, categoryID: m.CategoryID}

	switch {
	case contains(s.active, measureID):
		act.state = StateNone
	case s.state == StateMulti:
		act.state = StateNone
	case s.state == StateSingle && measures.Related(s.active[0], measureID):
		act.state = StateMulti
		act.ids = []string{s.active[0], measureID}
	default:
		act.state = StateSingle
		act.ids = []string{measureID}
	}

	if act.state == StateNone {
		s.logger.Debug("selection cleared", "measure", measureID)
		s.clearSelection()
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	return s.activate(ctx, act)
}

// SelectMultipleMeasures charts several measures together regardless of
// their relations. One id behaves like a fresh single selection.
func (s *Session) SelectMultipleMeasures(ctx context.Context, measureIDs []string) (*engine.GraphData, error) {
	filters, measures, err := s.catalogs(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	ids, categoryID, err := knownMeasures(measures, measureIDs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.filters, s.measures = filters, measures
	s.gen++
	act := activation{gen: s.gen, categoryID: categoryID, state: StateMulti, ids: ids}
	if len(ids) == 1 {
		act.state = StateSingle
	}
	s.mu.Unlock()

	return s.activate(ctx, act)
}

// ApplyChip selects a preset view: its measures, with only the chip's
// filters and the x-axis checked (first labels up to the default top N).
func (s *Session) ApplyChip(ctx context.Context, chipID string) (*engine.GraphData, error) {
	filters, measures, err := s.catalogs(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	chip, ok, err := s.store.Chip(ctx, chipID)
	if err != nil {
		return nil, s.fail(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChip, chipID)
	}
	ids, categoryID, err := knownMeasures(measures, chip.MeasureIDs)
	if err != nil {
		return nil, err
	}
	if chip.CategoryID != "" {
		categoryID = chip.CategoryID
	}
	topN := engine.TopN(s.opts...)

	s.mu.Lock()
	s.filters, s.measures = filters, measures
	s.gen++
	act := activation{
		gen:        s.gen,
		categoryID: categoryID,
		state:      StateMulti,
		ids:        ids,
		title:      chip.Name,
		desc:       chip.Description,
	}
	if len(ids) == 1 {
		act.state = StateSingle
	}
	act.prepare = func() {
		for _, id := range ids {
			m, _ := measures.Lookup(id)
			for _, g := range s.groups.ForMeasure(id) {
				chipFilter := contains(chip.FilterIDs, g.Filter.ID)
				for i, l := range g.Filter.Labels {
					l.Checked = (chipFilter || g.Filter.ID == m.XAxis) && i < topN
				}
				g.Filter.Expanded = chipFilter || g.Filter.ID == m.XAxis
			}
		}
	}
	s.mu.Unlock()

	return s.activate(ctx, act)
}

// ApplyShare rehydrates a shared graph: the payload's measure is selected
// and exactly the listed labels are checked.
func (s *Session) ApplyShare(ctx context.Context, p share.Payload) (*engine.GraphData, error) {
	filters, measures, err := s.catalogs(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	m, ok := measures.Lookup(p.MeasureID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMeasure, p.MeasureID)
	}
	categoryID := p.CategoryID
	if categoryID == "" {
		categoryID = m.CategoryID
	}

	s.mu.Lock()
	s.filters, s.measures = filters, measures
	s.gen++
	act := activation{gen: s.gen, categoryID: categoryID, state: StateSingle, ids: []string{m.ID}}
	act.prepare = func() {
		for _, g := range s.groups.ForMeasure(m.ID) {
			checked := p.Checked(g.Filter.ID)
			for _, l := range g.Filter.Labels {
				l.Checked = checked[l.Title]
			}
			g.Filter.Expanded = len(checked) > 0
		}
	}
	s.mu.Unlock()

	return s.activate(ctx, act)
}

// ============================================================================
// ACTIVATION
// ============================================================================

// activate loads the rows of act.ids without holding the lock, then commits
// the selection if it is still the newest one.
func (s *Session) activate(ctx context.Context, act activation) (*engine.GraphData, error) {
	var fetchErr error
	for _, id := range act.ids {
		if _, err := s.store.Rows(ctx, id); err != nil {
			fetchErr = err
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if act.gen != s.gen {
		s.logger.Debug("stale selection dropped", "measures", act.ids)
		return nil, ErrStale
	}
	if fetchErr != nil {
		if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
			return nil, fetchErr
		}
		s.logger.Error("selection failed", "measures", act.ids, "error", fetchErr)
		s.err = fetchErr
		s.clearSelection()
		return nil, fetchErr
	}

	if act.categoryID != "" && act.categoryID != s.categoryID {
		s.groups.Reset()
		s.categoryID = act.categoryID
	}
	for _, id := range act.ids {
		m, _ := s.measures.Lookup(id)
		s.ensureGroups(m)
	}

	s.err = nil
	s.state = act.state
	s.active = act.ids
	s.title = act.title
	s.desc = act.desc
	if act.prepare != nil {
		act.prepare()
	}

	s.logger.Debug("selection applied", "state", act.state.String(), "measures", act.ids)
	return s.recompute(), nil
}

// catalogs loads the filter and measure catalogs through the store.
func (s *Session) catalogs(ctx context.Context) (*catalog.FilterCatalog, *catalog.MeasureCatalog, error) {
	filters, err := s.store.Filters(ctx)
	if err != nil {
		return nil, nil, err
	}
	measures, err := s.store.Measures(ctx)
	if err != nil {
		return nil, nil, err
	}
	return filters, measures, nil
}

// fail records a collaborator failure: error flag set, selection and graph
// cleared. Cancellation is returned untouched.
func (s *Session) fail(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.mu.Lock()
	s.err = err
	s.clearSelection()
	s.mu.Unlock()
	return err
}

// knownMeasures resolves ids against the catalog, keeping order and
// dropping unknown and duplicate ids. The category is the first measure's.
func knownMeasures(measures *catalog.MeasureCatalog, ids []string) ([]string, string, error) {
	var out []string
	var categoryID string
	for _, id := range ids {
		m, ok := measures.Lookup(id)
		if !ok || contains(out, id) {
			continue
		}
		if categoryID == "" {
			categoryID = m.CategoryID
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, "", fmt.Errorf("%w: %v", ErrUnknownMeasure, ids)
	}
	return out, categoryID, nil
}

func hasCategory(categories []catalog.Category, id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
