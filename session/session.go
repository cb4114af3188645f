// Package session is the dashboard controller: it owns the filter groups of
// the selected category, runs the measure-selection state machine and keeps
// the current chart up to date after every interaction.
package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/spektr-org/statboard/catalog"
	"github.com/spektr-org/statboard/engine"
	"github.com/spektr-org/statboard/store"
)

// ============================================================================
// SESSION — Selection state machine + filter groups + current graph
// ============================================================================
// States:
//   None                 nothing selected, Graph() == nil
//   Single(id)           one measure charted
//   Multi(ids)           related measures charted together
//
// Every selection bumps a generation. Fetches run without the lock; a fetch
// that completes after a newer selection started returns ErrStale and
// changes nothing.
// ============================================================================

var (
	// ErrStale reports a selection superseded while its rows were loading.
	ErrStale = errors.New("selection superseded")
	// ErrUnknownMeasure reports a measure id absent from the catalog.
	ErrUnknownMeasure = errors.New("unknown measure")
	// ErrUnknownCategory reports a category id absent from the catalog.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownChip reports a chip id absent from the catalog.
	ErrUnknownChip = errors.New("unknown chip")
)

// State is the measure-selection state.
type State int

const (
	StateNone State = iota
	StateSingle
	StateMulti
)

func (s State) String() string {
	switch s {
	case StateSingle:
		return "single"
	case StateMulti:
		return "multi"
	default:
		return "none"
	}
}

// Config configures a Session.
type Config struct {
	Store  *store.Store
	Logger *slog.Logger    // optional, discard if nil
	Engine []engine.Option // passed to every engine builder
}

// Session is one user's dashboard. Safe for concurrent use.
type Session struct {
	store  *store.Store
	logger *slog.Logger
	opts   []engine.Option

	mu         sync.Mutex
	gen        uint64
	filters    *catalog.FilterCatalog
	measures   *catalog.MeasureCatalog
	categoryID string
	groups     *engine.GroupSet
	state      State
	active     []string
	title      string // overrides the graph title (chips)
	desc       string
	graph      *engine.GraphData
	err        error
}

// New creates a Session with nothing selected.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		store:  cfg.Store,
		logger: logger.With(slog.String("module", "session")),
		opts:   cfg.Engine,
		groups: engine.NewGroupSet(),
	}
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Graph returns the current chart, or nil when no measure is selected.
func (s *Session) Graph() *engine.GraphData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Err returns the last fetch failure, cleared by the next successful
// selection.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State returns the selection state and the active measure ids.
func (s *Session) State() (State, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, append([]string(nil), s.active...)
}

// CategoryID returns the loaded category.
func (s *Session) CategoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoryID
}

// Groups returns copies of a measure's filter groups.
func (s *Session) Groups(measureID string) []*engine.FilterGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := s.groups.ForMeasure(measureID)
	out := make([]*engine.FilterGroup, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}

// ============================================================================
// RECOMPUTATION (callers hold mu)
// ============================================================================

// recompute refreshes blocking for every active measure and rebuilds the
// graph snapshot.
func (s *Session) recompute() *engine.GraphData {
	var active []catalog.Measure
	for _, id := range s.active {
		if m, ok := s.measures.Lookup(id); ok {
			active = append(active, m)
			engine.ResolveBlocking(m, s.groups.ForMeasure(id))
		}
	}

	var graph *engine.GraphData
	switch {
	case s.state == StateNone || len(active) == 0:
		graph = nil
	case s.state == StateSingle || len(active) == 1:
		m := active[0]
		rows, _ := s.store.Cached(m.ID)
		graph = engine.BuildGraph(engine.GraphInput{
			Measure: m,
			Groups:  s.groups.ForMeasure(m.ID),
			Rows:    rows,
			Filters: s.filters,
			Rate:    s.store.IsRate(m),
		}, s.opts...)
	default:
		in := engine.MultiInput{
			Measures: active,
			Groups:   make(map[string][]*engine.FilterGroup, len(active)),
			Rows:     make(map[string]engine.RowView, len(active)),
			Rates:    make(map[string]bool, len(active)),
			Filters:  s.filters,
		}
		for _, m := range active {
			in.Groups[m.ID] = s.groups.ForMeasure(m.ID)
			if rows, ok := s.store.Cached(m.ID); ok {
				in.Rows[m.ID] = rows
			}
			in.Rates[m.ID] = s.store.IsRate(m)
		}
		graph = engine.BuildMultiMeasure(in, s.opts...)
	}

	s.graph = snapshot(graph, s.title, s.desc)
	return s.graph
}

// snapshot detaches a graph from the live filter groups.
func snapshot(g *engine.GraphData, title, desc string) *engine.GraphData {
	if g == nil {
		return nil
	}
	c := *g
	if title != "" {
		c.Title = title
	}
	if desc != "" {
		c.Description = desc
	}
	c.Categories = g.Categories.Clone()
	c.FilterGroups = make([]*engine.FilterGroup, len(g.FilterGroups))
	for i, fg := range g.FilterGroups {
		c.FilterGroups[i] = fg.Clone()
	}
	c.Series = append([]engine.Series(nil), g.Series...)
	c.MeasureIDs = append([]string(nil), g.MeasureIDs...)
	return &c
}

// ensureGroups builds the filter groups of a loaded measure once.
func (s *Session) ensureGroups(m catalog.Measure) {
	if len(s.groups.ForMeasure(m.ID)) > 0 {
		return
	}
	rows, ok := s.store.Cached(m.ID)
	if !ok {
		return
	}
	s.groups.ReplaceMeasure(m.ID, engine.BuildFilterGroups(m, s.filters, rows, s.opts...))
}

func (s *Session) clearSelection() {
	s.state = StateNone
	s.active = nil
	s.title = ""
	s.desc = ""
	s.graph = nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
