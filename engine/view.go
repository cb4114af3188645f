package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// ROW VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns fetched rows. It reads through this interface.
//
// Implementations:
//   SliceView — wraps []Row (API payloads, CSV datasets)
//   SubView   — matched subset (indices into parent, zero-copy)
//
// A nil RowView means "rows not loaded yet"; an empty one means "loaded,
// no rows". The two are never conflated.
// ============================================================================

// RowView provides indexed access to a measure's rows.
type RowView interface {
	Len() int
	// Text returns the value under key as a string ("" when missing).
	Text(index int, key string) string
	// Number returns the value under key as a float and whether it is numeric.
	Number(index int, key string) (float64, bool)
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView wraps a []Row slice as a RowView.
type SliceView struct {
	rows []Row
}

// NewSliceView creates a RowView from rows. A nil slice still yields an
// empty (loaded) view.
func NewSliceView(rows []Row) RowView {
	return &SliceView{rows: rows}
}

func (v *SliceView) Len() int { return len(v.rows) }

func (v *SliceView) Text(i int, key string) string {
	if i < 0 || i >= len(v.rows) {
		return ""
	}
	return FormatValue(v.rows[i][key])
}

func (v *SliceView) Number(i int, key string) (float64, bool) {
	if i < 0 || i >= len(v.rows) {
		return 0, false
	}
	return ToNumber(v.rows[i][key])
}

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView is a matched subset of a parent RowView.
type SubView struct {
	parent  RowView
	indices []int
}

func newSubView(parent RowView, indices []int) RowView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Text(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Text(v.indices[i], key)
}

func (v *SubView) Number(i int, key string) (float64, bool) {
	if i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return v.parent.Number(v.indices[i], key)
}

// ============================================================================
// VALUE CONVERSION
// ============================================================================

// FormatValue renders a row value as a label title.
// Whole numbers print without decimals: 2020.0 → "2020".
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ToNumber converts a row value to float64. Numeric strings are accepted;
// NaN, empty and non-numeric values are not.
func ToNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), !math.IsNaN(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
