package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/statboard/internal/testutil"
)

func TestRowsName(t *testing.T) {
	assert.Equal(t, "104", RowsName("M-104"))
	assert.Equal(t, "12", RowsName("1a2"))
	assert.Equal(t, "", RowsName("abc"))
}

func TestHTTPSourceRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dimFilters":
			_, _ = w.Write([]byte(`[{"Filter_ID":"f1","Filter_Name":"Year","DB_Attributes":"year"}]`))
		case "/api/104":
			_, _ = w.Write([]byte(`[{"year":2020,"value":1.5},{"year":2021,"value":2}]`))
		case "/api/empty":
			_, _ = w.Write([]byte(`null`))
		default:
			http.Error(w, "no such dataset", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/api/", Timeout: time.Second, Logger: testutil.NewTestLogger(t)})
	ctx := context.Background()

	filters, err := src.Records(ctx, Filters)
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, "year", filters[0]["DB_Attributes"])

	rows, err := src.Records(ctx, RowsName("M-104"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1.5, rows[0]["value"])

	empty, err := src.Records(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = src.Records(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSourceCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/"}).Records(ctx, Chips)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeRecordsInvalid(t *testing.T) {
	_, err := DecodeRecords([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestDirSourceRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("dimFilters.json", `[{"Filter_ID":"f1","DB_Attributes":"year"}]`)
	write("layersMeasures.yaml", "- Measure ID: M-1\n  Measure Name: Claims\n  Filters: f1\n")
	write("1.csv", "year,value\n2020,3\n2021,4.5\n")

	src := NewDir(dir, testutil.NewTestLogger(t))
	ctx := context.Background()

	filters, err := src.Records(ctx, Filters)
	require.NoError(t, err)
	assert.Equal(t, "f1", filters[0]["Filter_ID"])

	measures, err := src.Records(ctx, Measures)
	require.NoError(t, err)
	require.Len(t, measures, 1)
	assert.Equal(t, "Claims", measures[0]["Measure Name"])

	rows, err := src.Records(ctx, RowsName("M-1"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4.5, rows[1]["value"])

	_, err = src.Records(ctx, Chips)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Records(ctx, "../etc")
	assert.Error(t, err)
}
