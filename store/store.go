// Package store owns every piece of fetched dashboard state: the catalogs,
// the per-measure row cache, the rate memo and in-flight fetch
// de-duplication.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/spektr-org/statboard/catalog"
	"github.com/spektr-org/statboard/engine"
	"github.com/spektr-org/statboard/source"
)

// ============================================================================
// DATA STORE — Lazy, de-duplicated, cached access to the statistics API
// ============================================================================
// Catalogs load once. Rows load once per measure; concurrent requests for
// the same measure share one in-flight fetch, whose entry is dropped on
// completion or failure. A caller giving up (context canceled) does not
// cancel the shared fetch. Reset clears everything.
// ============================================================================

// ErrFetch marks a failed collaborator fetch.
var ErrFetch = errors.New("fetch failed")

// Config configures a Store.
type Config struct {
	Source  source.Source
	Logger  *slog.Logger    // optional, discard if nil
	Engine  []engine.Option // used by IsRate
	Workers int             // Prefetch concurrency, 0 = 4
}

// Store caches dashboard data. Safe for concurrent use.
type Store struct {
	src     source.Source
	logger  *slog.Logger
	opts    []engine.Option
	workers int

	flight singleflight.Group

	mu         sync.RWMutex
	filters    *catalog.FilterCatalog
	measures   *catalog.MeasureCatalog
	categories []catalog.Category
	chips      []catalog.Chip
	rows       map[string]engine.RowView
	rates      map[string]bool
}

// New creates an empty Store.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Store{
		src:     cfg.Source,
		logger:  logger,
		opts:    cfg.Engine,
		workers: workers,
		rows:    make(map[string]engine.RowView),
		rates:   make(map[string]bool),
	}
}

// Reset drops every cached catalog, view and classification.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = nil
	s.measures = nil
	s.categories = nil
	s.chips = nil
	s.rows = make(map[string]engine.RowView)
	s.rates = make(map[string]bool)
	s.logger.Debug("store reset")
}

// ============================================================================
// CATALOGS
// ============================================================================

// Filters returns the filter catalog, loading it on first use.
func (s *Store) Filters(ctx context.Context) (*catalog.FilterCatalog, error) {
	s.mu.RLock()
	c := s.filters
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err := s.do(ctx, source.Filters, func(fctx context.Context) (any, error) {
		records, err := s.fetch(fctx, source.Filters)
		if err != nil {
			return nil, err
		}
		c := catalog.NewFilterCatalog(catalog.DecodeFilters(records))
		s.mu.Lock()
		s.filters = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.FilterCatalog), nil
}

// Measures returns the catalog of every measure, loading it on first use.
func (s *Store) Measures(ctx context.Context) (*catalog.MeasureCatalog, error) {
	s.mu.RLock()
	c := s.measures
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err := s.do(ctx, source.Measures, func(fctx context.Context) (any, error) {
		records, err := s.fetch(fctx, source.Measures)
		if err != nil {
			return nil, err
		}
		c := catalog.NewMeasureCatalog(catalog.DecodeMeasures(records))
		s.mu.Lock()
		s.measures = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.MeasureCatalog), nil
}

// MeasuresForCategory returns the measures of one category in load order.
func (s *Store) MeasuresForCategory(ctx context.Context, categoryID string) ([]catalog.Measure, error) {
	c, err := s.Measures(ctx)
	if err != nil {
		return nil, err
	}
	return c.ForCategory(categoryID), nil
}

// Measure looks up one measure.
func (s *Store) Measure(ctx context.Context, id string) (catalog.Measure, bool, error) {
	c, err := s.Measures(ctx)
	if err != nil {
		return catalog.Measure{}, false, err
	}
	m, ok := c.Lookup(id)
	return m, ok, nil
}

// Categories returns the dashboard categories.
func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	c := s.categories
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err := s.do(ctx, source.Categories, func(fctx context.Context) (any, error) {
		records, err := s.fetch(fctx, source.Categories)
		if err != nil {
			return nil, err
		}
		c := catalog.DecodeCategories(records)
		s.mu.Lock()
		s.categories = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Category), nil
}

// Chips returns the preset views.
func (s *Store) Chips(ctx context.Context) ([]catalog.Chip, error) {
	s.mu.RLock()
	c := s.chips
	s.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	v, err := s.do(ctx, source.Chips, func(fctx context.Context) (any, error) {
		records, err := s.fetch(fctx, source.Chips)
		if err != nil {
			return nil, err
		}
		c := catalog.DecodeChips(records)
		s.mu.Lock()
		s.chips = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Chip), nil
}

// Chip looks up one preset view.
func (s *Store) Chip(ctx context.Context, id string) (catalog.Chip, bool, error) {
	chips, err := s.Chips(ctx)
	if err != nil {
		return catalog.Chip{}, false, err
	}
	for _, c := range chips {
		if c.ID == id {
			return c, true, nil
		}
	}
	return catalog.Chip{}, false, nil
}

// ============================================================================
// ROWS
// ============================================================================

// Rows returns a measure's view, fetching it once.
func (s *Store) Rows(ctx context.Context, measureID string) (engine.RowView, error) {
	if view, ok := s.Cached(measureID); ok {
		return view, nil
	}

	name := source.RowsName(measureID)
	v, err := s.do(ctx, "rows:"+measureID, func(fctx context.Context) (any, error) {
		if view, ok := s.Cached(measureID); ok {
			return view, nil
		}
		records, err := s.fetch(fctx, name)
		if err != nil {
			return nil, err
		}

		rows := make([]engine.Row, len(records))
		for i, r := range records {
			rows[i] = engine.Row(r)
		}
		view := engine.NewSliceView(rows)

		s.mu.Lock()
		s.rows[measureID] = view
		s.mu.Unlock()
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(engine.RowView), nil
}

// Cached returns a measure's view only if it is already loaded.
func (s *Store) Cached(measureID string) (engine.RowView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view, ok := s.rows[measureID]
	return view, ok
}

// Loaded reports whether a measure's rows are loaded. A loaded view may be
// empty; an unloaded one is pending.
func (s *Store) Loaded(measureID string) bool {
	_, ok := s.Cached(measureID)
	return ok
}

// Prefetch loads several measures concurrently. One failure does not stop
// the others; the first failure is returned and successful loads stay cached.
func (s *Store) Prefetch(ctx context.Context, measureIDs []string) error {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range measureIDs {
		g.Go(func() error {
			_, err := s.Rows(ctx, id)
			return err
		})
	}
	return g.Wait()
}

// IsRate classifies a measure's value column, once per loaded view. An
// unloaded measure is not a rate and the answer is not memoized.
func (s *Store) IsRate(m catalog.Measure) bool {
	s.mu.RLock()
	rate, memo := s.rates[m.ID]
	view, loaded := s.rows[m.ID]
	s.mu.RUnlock()
	if memo {
		return rate
	}
	if !loaded {
		return false
	}

	rate = engine.IsRate(view, m.Value, s.opts...)

	s.mu.Lock()
	if _, ok := s.rows[m.ID]; ok {
		s.rates[m.ID] = rate
	}
	s.mu.Unlock()
	s.logger.Debug("measure classified", "measure", m.ID, "rate", rate)
	return rate
}

// ============================================================================
// FETCH
// ============================================================================

// do runs fn once per key among concurrent callers. The shared call runs
// detached from any single caller's cancellation; a caller whose context
// ends stops waiting without affecting the others.
func (s *Store) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.flight.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// fetch reads one dataset, wrapping failures in ErrFetch.
func (s *Store) fetch(ctx context.Context, name string) ([]catalog.Record, error) {
	if s.src == nil {
		return nil, fmt.Errorf("%w: %s: no source configured", ErrFetch, name)
	}

	s.logger.Debug("fetching dataset", "name", name)
	records, err := s.src.Records(ctx, name)
	if err != nil {
		s.logger.Warn("dataset fetch failed", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, name, err)
	}
	return records, nil
}
