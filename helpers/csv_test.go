package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowanceCSV = []byte("\ufeffyear,region, gender ,value\n" +
	"2020,North,M,120\n" +
	"2020,North,F,80.5\n" +
	"2021,,F,64\n" +
	"\"2021\",\"South, coast\",M,3\n")

func TestParseCSVRows(t *testing.T) {
	rows, err := ParseCSVRows(allowanceCSV)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 2020.0, rows[0]["year"])
	assert.Equal(t, "North", rows[0]["region"])
	assert.Equal(t, "M", rows[0]["gender"])
	assert.Equal(t, 80.5, rows[1]["value"])

	_, hasRegion := rows[2]["region"]
	assert.False(t, hasRegion, "empty cells are left out")
	assert.Equal(t, "South, coast", rows[3]["region"])
}

func TestParseCSVView(t *testing.T) {
	view, err := ParseCSVView(allowanceCSV)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Len())
	assert.Equal(t, "2020", view.Text(0, "year"))

	_, err = ParseCSVView(nil)
	assert.Error(t, err)
}
