package engine

import (
	"testing"

	"github.com/spektr-org/statboard/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// BLOCKED-FILTER RESOLVER TESTS
// ============================================================================

// blockingMeasure: x-axis fy, blocking groups [fr, fg] and [fa, fs], fe free.
func blockingMeasure() (catalog.Measure, []*FilterGroup) {
	m := catalog.Measure{
		ID:             "mb",
		Name:           "Blocked",
		Filters:        []string{"fy", "fr", "fg", "fa", "fs", "fe"},
		BlockedFilters: [][]string{{"fr", "fg"}, {"[fa", "fs"}},
		XAxis:          "fy",
		Value:          "value",
	}
	rows := []Row{
		{"year": "2020", "region": "A", "gender": "M", "age": "18", "sector": "S", "education": "E", "value": 1.0},
		{"year": "2021", "region": "B", "gender": "F", "age": "30", "sector": "T", "education": "H", "value": 2.0},
	}
	groups := groupsFor(m, rows)
	for _, g := range groups {
		if g.Filter.ID != "fy" {
			checkAll(g, false)
		}
	}
	return m, groups
}

func disabledIDs(groups []*FilterGroup) []string {
	var out []string
	for _, g := range groups {
		if g.Filter.Disabled {
			out = append(out, g.Filter.ID)
		}
	}
	return out
}

func TestResolveBlockingGroups(t *testing.T) {
	m, groups := blockingMeasure()

	ResolveBlocking(m, groups)
	assert.Empty(t, disabledIDs(groups), "nothing active besides the x-axis")

	checkOnly(findGroup(groups, "fr"), "A")
	ResolveBlocking(m, groups)
	assert.Equal(t, []string{"fg"}, disabledIDs(groups))

	checkOnly(findGroup(groups, "fa"), "18")
	ResolveBlocking(m, groups)
	assert.Contains(t, disabledIDs(groups), "fg")
	assert.Contains(t, disabledIDs(groups), "fs")
}

func TestResolveBlockingSecondGroupOnly(t *testing.T) {
	m, groups := blockingMeasure()

	checkOnly(findGroup(groups, "fs"), "S")
	ResolveBlocking(m, groups)
	assert.Equal(t, []string{"fa"}, disabledIDs(groups), "stray bracket stripped from fa")
}

func TestResolveBlockingStackedOverride(t *testing.T) {
	m, groups := blockingMeasure()

	// fr and fe share no blocking group, yet every other filter is disabled.
	checkOnly(findGroup(groups, "fr"), "A")
	checkOnly(findGroup(groups, "fe"), "E")
	ResolveBlocking(m, groups)

	assert.ElementsMatch(t, []string{"fg", "fa", "fs"}, disabledIDs(groups))
	assert.False(t, findGroup(groups, "fy").Filter.Disabled, "x-axis stays enabled")
}

func TestResolveBlockingIdempotent(t *testing.T) {
	m, groups := blockingMeasure()
	checkOnly(findGroup(groups, "fg"), "F")

	ResolveBlocking(m, groups)
	first := disabledIDs(groups)
	ResolveBlocking(m, groups)
	assert.Equal(t, first, disabledIDs(groups))
}

func TestResolveBlockingResetAfterUncheck(t *testing.T) {
	m, groups := blockingMeasure()
	checkOnly(findGroup(groups, "fr"), "A")
	ResolveBlocking(m, groups)
	require.Equal(t, 1, DisabledCount(m, groups))

	for _, g := range groups {
		checkAll(g, false)
	}
	ResolveBlocking(m, groups)
	assert.Zero(t, DisabledCount(m, groups))
}

func TestResolveBlockingIgnoresUnknownAndForeign(t *testing.T) {
	m, groups := blockingMeasure()
	m.BlockedFilters = append(m.BlockedFilters, []string{"fr", "nope"})

	foreign := &FilterGroup{MeasureID: "other", Filter: FilterState{Filter: catalog.Filter{ID: "fg"}, Disabled: true}}
	groups = append(groups, foreign)

	checkOnly(findGroup(groups, "fr"), "A")
	ResolveBlocking(m, groups)
	assert.True(t, foreign.Filter.Disabled, "other measures untouched")
	assert.True(t, findGroup(groups, "fg").Filter.Disabled)
}
