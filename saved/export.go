package saved

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/statboard/engine"
)

// ============================================================================
// CSV EXPORT — Saved graphs → spreadsheet-ready CSV
// ============================================================================
// Per graph, separated by a blank line:
//
//	title
//	subtitle
//	2020,2021,          checked x-axis labels, trailing empty cell
//	30,1,North           per series: values then name
//
// The file starts with a UTF-8 BOM so spreadsheet apps detect the encoding.
// ============================================================================

const bom = "\ufeff"

// ExportCSV writes graphs to w. Nothing is written for an empty list.
func ExportCSV(w io.Writer, graphs []Graph) error {
	if len(graphs) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	for i, g := range graphs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}
		if err := writeGraph(w, g); err != nil {
			return fmt.Errorf("export %s: %w", g.ID, err)
		}
	}
	return nil
}

func writeGraph(w io.Writer, g Graph) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{strings.ReplaceAll(g.Title, ",", " ")},
		{g.Subtitle},
	}

	var indexes []int
	var header []string
	if g.Data != nil && g.Data.Categories != nil {
		for i, l := range g.Data.Categories.Filter.Labels {
			if l.Checked {
				indexes = append(indexes, i)
				header = append(header, l.Title)
			}
		}
	}
	rows = append(rows, append(header, ""))

	if g.Data != nil {
		for _, s := range g.Data.Series {
			rows = append(rows, seriesRow(s, indexes))
		}
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// seriesRow picks the values of the checked categories, then the name.
func seriesRow(s engine.Series, indexes []int) []string {
	row := make([]string, 0, len(indexes)+1)
	for _, i := range indexes {
		if i < len(s.Data) {
			row = append(row, fmtNum(s.Data[i]))
		} else {
			row = append(row, "")
		}
	}
	return append(row, s.Name)
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
