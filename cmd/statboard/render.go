package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/spektr-org/statboard/catalog"
	"github.com/spektr-org/statboard/engine"
	"github.com/spektr-org/statboard/saved"
)

// ============================================================================
// OUTPUT — go-pretty tables or JSON
// ============================================================================

// render writes v as JSON in json mode, otherwise calls asTable.
func (a *app) render(w io.Writer, v any, asTable func()) error {
	if a.cfg != nil && a.cfg.Output == "json" {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	asTable()
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderCategories(w io.Writer, categories []catalog.Category) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Description", "Chips"})
	for _, c := range categories {
		t.AppendRow(table.Row{c.ID, c.Name, c.Description, strings.Join(c.ChipIDs, ", ")})
	}
	t.Render()
}

func renderMeasures(w io.Writer, measures []catalog.Measure) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Graph", "X Axis", "Filters", "Related"})
	for _, m := range measures {
		t.AppendRow(table.Row{m.ID, m.Name, m.GraphType, m.XAxis, strings.Join(m.Filters, ", "), strings.Join(m.Relations, ", ")})
	}
	t.Render()
}

func renderLabels(w io.Writer, groups []*engine.FilterGroup) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Filter", "Label", "Checked", "Disabled"})
	for _, g := range groups {
		for _, l := range g.Filter.Labels {
			t.AppendRow(table.Row{g.Filter.ID, l.Title, mark(l.Checked), mark(g.Filter.Disabled)})
		}
	}
	t.Render()
}

// renderGraph prints one row per series with the values of the checked
// x-axis labels.
func renderGraph(w io.Writer, g *engine.GraphData) {
	_, _ = fmt.Fprintf(w, "%s (%s)\n", g.Title, g.Type)
	if g.Description != "" {
		_, _ = fmt.Fprintln(w, g.Description)
	}

	var indexes []int
	header := table.Row{"Series", "Stack"}
	if g.Categories != nil {
		for i, l := range g.Categories.Filter.Labels {
			if l.Checked {
				indexes = append(indexes, i)
				header = append(header, l.Title)
			}
		}
	}

	t := newTable(w)
	t.AppendHeader(header)
	for _, s := range g.Series {
		row := table.Row{s.Name, s.Stack}
		for _, i := range indexes {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i]))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderSaved(w io.Writer, graphs []saved.Graph) {
	if len(graphs) == 0 {
		_, _ = fmt.Fprintln(w, "(no saved graphs)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Subtitle", "Category", "Saved"})
	for _, g := range graphs {
		t.AppendRow(table.Row{g.ID, g.Title, g.Subtitle, g.CategoryID, g.CreatedAt.Format("2006-01-02 15:04")})
	}
	t.Render()
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return ""
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
