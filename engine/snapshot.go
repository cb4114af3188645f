package engine

import (
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// SNAPSHOT EQUALITY — de-duplication of saved graphs
// ============================================================================
// Two snapshots are equal when category, title, the set of checked x-axis
// titles and the multiset of (series name, data) match. Colors, stacks and
// disabled flags are ignored.
// ============================================================================

// SnapshotsEqual reports whether a and b describe the same chart.
func SnapshotsEqual(a, b *GraphData) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.CategoryID != b.CategoryID || a.Title != b.Title {
		return false
	}
	if !sameSet(a.CheckedCategories(), b.CheckedCategories()) {
		return false
	}
	return sameSet(seriesKeys(a.Series), seriesKeys(b.Series))
}

func seriesKeys(series []Series) []string {
	keys := make([]string, len(series))
	for i, s := range series {
		var sb strings.Builder
		sb.WriteString(s.Name)
		sb.WriteByte(0)
		for j, v := range s.Data {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		keys[i] = sb.String()
	}
	return keys
}

// sameSet compares two string multisets, order-independent.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
