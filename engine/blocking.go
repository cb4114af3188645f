package engine

import (
	"strings"

	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// BLOCKED-FILTER RESOLVER — Recomputes Disabled flags for one measure
// ============================================================================
// Runs after every checked-state change. Mutates groups in place and is
// idempotent: a second call without label changes yields the same flags.
//
//   1. reset every group to enabled
//   2. exactly two active non-x-axis filters → stacked-bar mode, every
//      inactive group disabled, blocking rules skipped
//   3. otherwise, per blocking group: one active member disables the
//      group's inactive members
// ============================================================================

// ResolveBlocking recomputes Disabled on the groups belonging to m.
// Groups of other measures and unknown ids are ignored.
func ResolveBlocking(m catalog.Measure, groups []*FilterGroup) {
	own := make(map[string]*FilterGroup, len(groups))
	for _, g := range groups {
		if g == nil || g.MeasureID != m.ID {
			continue
		}
		g.Filter.Disabled = false
		own[g.Filter.ID] = g
	}

	active := ActiveFilterIDs(m, groups)
	activeNonX := 0
	for id := range active {
		if id != m.XAxis {
			activeNonX++
		}
	}

	if activeNonX == 2 {
		for id, g := range own {
			if !active[id] {
				g.Filter.Disabled = true
			}
		}
		return
	}

	if len(m.BlockedFilters) == 0 || len(active) == 0 {
		return
	}

	for _, block := range m.BlockedFilters {
		if !anyActive(block, active) {
			continue
		}
		for _, raw := range block {
			id := strings.ReplaceAll(raw, "[", "")
			if active[id] {
				continue
			}
			if g, ok := own[id]; ok {
				g.Filter.Disabled = true
			}
		}
	}
}

// ActiveFilterIDs returns the ids of m's groups holding at least one checked label.
func ActiveFilterIDs(m catalog.Measure, groups []*FilterGroup) map[string]bool {
	active := make(map[string]bool)
	for _, g := range groups {
		if g == nil || g.MeasureID != m.ID {
			continue
		}
		if g.IsActive() {
			active[g.Filter.ID] = true
		}
	}
	return active
}

// DisabledCount returns how many of m's groups are disabled.
func DisabledCount(m catalog.Measure, groups []*FilterGroup) int {
	n := 0
	for _, g := range groups {
		if g != nil && g.MeasureID == m.ID && g.Filter.Disabled {
			n++
		}
	}
	return n
}

func anyActive(block []string, active map[string]bool) bool {
	for _, raw := range block {
		if active[strings.ReplaceAll(raw, "[", "")] {
			return true
		}
	}
	return false
}
