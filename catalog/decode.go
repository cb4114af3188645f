package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ============================================================================
// DECODING — Raw API records → catalog types
// ============================================================================
// The statistics API serves spreadsheet-shaped JSON: every record is a flat
// object keyed by the sheet's column titles. Lists arrive as comma-separated
// strings and blocked filters as "[a, b], [c, d]" or plain "a, b".
// Everything polymorphic is normalized here, once.
// ============================================================================

// Record is one raw metadata row as decoded from JSON or YAML.
type Record = map[string]any

var bracketGroup = regexp.MustCompile(`\[(.*?)\]`)

// ParseBlockedFilters normalizes the "Blocked Filters" column into groups.
//
//	"[f1, f2], [f3, f4]" → [[f1 f2] [f3 f4]]
//	"f1, f2"             → [[f1 f2]]
//	""                   → nil
//
// Stray brackets are stripped from ids.
func ParseBlockedFilters(raw string) [][]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	matches := bracketGroup.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		if group := ParseList(raw); len(group) > 0 {
			return [][]string{group}
		}
		return nil
	}

	groups := make([][]string, 0, len(matches))
	for _, m := range matches {
		if group := ParseList(m[1]); len(group) > 0 {
			groups = append(groups, group)
		}
	}
	if len(groups) == 0 {
		return nil
	}
	return groups
}

// ParseList splits a comma-separated id list. Surrounding parentheses and
// brackets are dropped, entries are trimmed and empties discarded.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "()")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = cleanID(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cleanID(s string) string {
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	return strings.TrimSpace(s)
}

// ============================================================================
// RECORD DECODERS
// ============================================================================

// DecodeFilters converts dimFilters records.
func DecodeFilters(records []Record) []Filter {
	filters := make([]Filter, 0, len(records))
	for _, r := range records {
		id := str(r, "Filter_ID")
		if id == "" {
			continue
		}
		filters = append(filters, Filter{
			ID:        id,
			Name:      str(r, "Filter_Name"),
			ColumnKey: str(r, "DB_Attributes"),
		})
	}
	return filters
}

// DecodeMeasures converts layersMeasures records.
func DecodeMeasures(records []Record) []Measure {
	measures := make([]Measure, 0, len(records))
	for _, r := range records {
		id := str(r, "Measure ID")
		if id == "" {
			continue
		}
		measures = append(measures, Measure{
			ID:             id,
			Name:           str(r, "Measure Name"),
			CategoryID:     str(r, "Category_ID"),
			Filters:        list(r, "Filters"),
			BlockedFilters: ParseBlockedFilters(str(r, "Blocked Filters")),
			Relations:      list(r, "Measure_Relations"),
			GraphType:      str(r, "Graph"),
			XAxis:          str(r, "X Axis Default"),
			YAxis:          str(r, "Y Axis Default"),
			Value:          str(r, "Default Value Attribute"),
		})
	}
	return measures
}

// DecodeCategories converts categories records.
func DecodeCategories(records []Record) []Category {
	categories := make([]Category, 0, len(records))
	for _, r := range records {
		id := str(r, "Category_ID")
		if id == "" {
			continue
		}
		categories = append(categories, Category{
			ID:          id,
			Name:        str(r, "Category_Name"),
			Description: str(r, "Description"),
			ChipIDs:     list(r, "Chip_ID"),
		})
	}
	return categories
}

// DecodeChips converts chips records. Chips without a measure or a filter
// are dropped, as the dashboard cannot render them.
func DecodeChips(records []Record) []Chip {
	chips := make([]Chip, 0, len(records))
	for _, r := range records {
		chip := Chip{
			ID:          str(r, "Chip_ID"),
			Name:        str(r, "Chip_Name"),
			Description: str(r, "Chip_Description"),
			CategoryID:  str(r, "Category_ID"),
			MeasureIDs:  list(r, "Measure ID"),
			FilterIDs:   list(r, "Filter_ID"),
		}
		if chip.ID == "" || len(chip.MeasureIDs) == 0 || len(chip.FilterIDs) == 0 {
			continue
		}
		chips = append(chips, chip)
	}
	return chips
}

// ============================================================================
// FIELD HELPERS
// ============================================================================

// str reads a field as a trimmed string. Numbers are formatted without
// trailing zeros so numeric ids survive.
func str(r Record, key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// list reads a field that is either a comma-separated string or an array.
func list(r Record, key string) []string {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := cleanID(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return ParseList(str(r, key))
}
