package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/statboard/engine"
)

// ============================================================================
// CSV HELPER — Parses CSV datasets into []engine.Row
// ============================================================================
// Offline copies of measure views are plain CSV exports. The header row
// names the columns exactly as the statistics API does; numeric cells become
// float64 so they match the API's JSON numbers.
// ============================================================================

// ParseCSVRows parses CSV bytes into rows keyed by header name.
// Empty cells are left out. Malformed rows are skipped.
func ParseCSVRows(data []byte) ([]engine.Row, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = strings.TrimSpace(h)
	}

	rows := make([]engine.Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		row := make(engine.Row, len(keys))
		for i, val := range record {
			if i >= len(keys) {
				break
			}
			val = strings.TrimSpace(val)
			if val == "" || keys[i] == "" {
				continue
			}

			if f, err := strconv.ParseFloat(val, 64); err == nil {
				row[keys[i]] = f
			} else {
				row[keys[i]] = val
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ParseCSVView parses CSV into a RowView (convenience wrapper).
func ParseCSVView(data []byte) (engine.RowView, error) {
	rows, err := ParseCSVRows(data)
	if err != nil {
		return nil, err
	}
	return engine.NewSliceView(rows), nil
}
