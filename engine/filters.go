package engine

// ============================================================================
// FILTERS — Single-pass row matching via RowView
// ============================================================================
// Checks ALL column constraints per row in one loop and returns a SubView
// (index list into parent). No data is copied. Comparison is exact on the
// formatted value, the same string a Label title carries.
// ============================================================================

// Condition requires Column to equal Value.
type Condition struct {
	Column string
	Value  string
}

// Match returns the rows satisfying every condition (AND).
func Match(view RowView, conds ...Condition) RowView {
	if view == nil {
		return NewSliceView(nil)
	}
	if len(conds) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if matchesAll(view, i, conds) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

// Exclude returns the rows holding no non-empty value in any of the columns.
func Exclude(view RowView, columns []string) RowView {
	if view == nil {
		return NewSliceView(nil)
	}
	if len(columns) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		blocked := false
		for _, col := range columns {
			if view.Text(i, col) != "" {
				blocked = true
				break
			}
		}
		if !blocked {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

func matchesAll(view RowView, i int, conds []Condition) bool {
	for _, c := range conds {
		if view.Text(i, c.Column) != c.Value {
			return false
		}
	}
	return true
}
