package engine

import (
	"math"
)

// ============================================================================
// AGGREGATORS — Bucketing, Sum/Mean and Rate Classification via RowView
// ============================================================================
// All functions operate on RowView, zero-copy access to fetched rows.
// Bucketing produces SubViews (index lists into parent view).
// Aggregation never fails: empty buckets and non-numeric values yield 0.
// ============================================================================

// Aggregation selects how matched rows collapse into one value.
type Aggregation int

const (
	// AggregateSum adds the value column.
	AggregateSum Aggregation = iota
	// AggregateRate averages the value column and scales fractions to percent.
	AggregateRate
)

// AggregationFor returns AggregateRate when rate is true.
func AggregationFor(rate bool) Aggregation {
	if rate {
		return AggregateRate
	}
	return AggregateSum
}

// ============================================================================
// BUCKETING
// ============================================================================

// BucketBy groups rows by the text value of column. Keys absent from the
// data have no bucket.
func BucketBy(view RowView, column string) map[string]RowView {
	grouped := make(map[string][]int)
	for i := 0; i < view.Len(); i++ {
		key := view.Text(i, column)
		grouped[key] = append(grouped[key], i)
	}

	buckets := make(map[string]RowView, len(grouped))
	for key, indices := range grouped {
		buckets[key] = newSubView(view, indices)
	}
	return buckets
}

// SeriesValues aggregates one value per category label, in label order.
// A nil view yields nil (not ready).
func SeriesValues(view RowView, xColumn string, categories []*Label, valueKey string, agg Aggregation, opts ...Option) []float64 {
	if view == nil || xColumn == "" {
		return nil
	}
	return seriesValues(view, xColumn, categories, valueKey, agg, applyOptions(opts))
}

func seriesValues(view RowView, xColumn string, categories []*Label, valueKey string, agg Aggregation, cfg *config) []float64 {
	if view == nil || xColumn == "" {
		return nil
	}
	buckets := BucketBy(view, xColumn)
	values := make([]float64, len(categories))
	for i, cat := range categories {
		bucket, ok := buckets[cat.Title]
		if !ok {
			continue
		}
		values[i] = aggregate(bucket, valueKey, agg, cfg)
	}
	return values
}

// Aggregate collapses a view into a single value.
func Aggregate(view RowView, valueKey string, agg Aggregation, opts ...Option) float64 {
	if view == nil {
		return 0
	}
	return aggregate(view, valueKey, agg, applyOptions(opts))
}

func aggregate(view RowView, valueKey string, agg Aggregation, cfg *config) float64 {
	switch agg {
	case AggregateRate:
		return NormalizeRate(MeanValue(view, valueKey), cfg.RateScaleThreshold)
	default:
		return SumValue(view, valueKey)
	}
}

// ============================================================================
// AGGREGATION
// ============================================================================

// SumValue sums a numeric column across a view. Non-numeric cells count as 0.
func SumValue(view RowView, key string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Number(i, key); ok {
			total += v
		}
	}
	return total
}

// MeanValue averages the numeric cells of a column. No numeric cells → 0.
func MeanValue(view RowView, key string) float64 {
	var total float64
	var n int
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Number(i, key); ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// NormalizeRate renders a mean as a percentage. Means whose magnitude is at
// or below threshold are fractions and get scaled ×100; larger means are
// already percentages.
func NormalizeRate(mean, threshold float64) float64 {
	if math.Abs(mean) <= threshold {
		return mean * 100
	}
	return mean
}

// ============================================================================
// RATE CLASSIFICATION
// ============================================================================

// IsRate samples the first rows of a view: any numeric value with a
// fractional part classifies the whole column as a rate. Zero and other
// integers do not. Callers memoize the result per measure.
func IsRate(view RowView, valueKey string, opts ...Option) bool {
	if view == nil || view.Len() == 0 {
		return false
	}
	cfg := applyOptions(opts)

	n := view.Len()
	if n > cfg.RateSample {
		n = cfg.RateSample
	}
	for i := 0; i < n; i++ {
		v, ok := view.Number(i, valueKey)
		if !ok {
			continue
		}
		if v != math.Trunc(v) {
			return true
		}
	}
	return false
}
