// Package source fetches the raw records the dashboard is built from: the
// filter and measure metadata tables and the per-measure data views.
package source

import (
	"context"
	"regexp"

	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// SOURCE — Collaborator boundary for the statistics API
// ============================================================================
// Every dataset is addressed by a name and comes back as a JSON-style array
// of records. Metadata tables have fixed names; a measure's view is named by
// the digits of its measure id ("M-104" → "104").
// ============================================================================

// Dataset names served by the statistics API.
const (
	Filters    = "dimFilters"
	Measures   = "layersMeasures"
	Categories = "categories"
	Chips      = "chips"
)

// Source returns the records of a named dataset.
type Source interface {
	Records(ctx context.Context, name string) ([]catalog.Record, error)
}

var nonDigits = regexp.MustCompile(`\D+`)

// RowsName returns the dataset name of a measure's view.
func RowsName(measureID string) string {
	return nonDigits.ReplaceAllString(measureID, "")
}
