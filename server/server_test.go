package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/statboard/catalog"
	"github.com/spektr-org/statboard/internal/testutil"
	"github.com/spektr-org/statboard/saved"
	"github.com/spektr-org/statboard/share"
	"github.com/spektr-org/statboard/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *testutil.MemSource, *saved.Store) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	src := testutil.NewMemSource(testutil.Dashboard())
	db, err := saved.Open(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := New(Config{
		Store:     store.New(store.Config{Source: src, Logger: logger}),
		Saved:     db,
		Logger:    logger,
		ShareBase: "https://stats.example.org",
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, src, db
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthAndCategories(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = get(t, ts, "/api/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cats []catalog.Category
	require.NoError(t, json.Unmarshal(body, &cats))
	assert.Len(t, cats, 2)

	resp, body = get(t, ts, "/api/categories/c1/measures")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var measures []catalog.Measure
	require.NoError(t, json.Unmarshal(body, &measures))
	assert.Len(t, measures, 4)

	resp, _ = get(t, ts, "/api/categories/nope/measures")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMeasureGraphAndShareLink(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts, "/api/measures/M-1/graph")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got graphResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.Graph)
	assert.Equal(t, "Claims", got.Graph.Title)
	assert.Len(t, got.Graph.Series, 2)
	require.True(t, strings.HasPrefix(got.ShareLink, "https://stats.example.org/category?"))

	link, err := url.Parse(got.ShareLink)
	require.NoError(t, err)
	resp, body = get(t, ts, "/api/graph?"+link.RawQuery)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var shared graphResponse
	require.NoError(t, json.Unmarshal(body, &shared))
	assert.Equal(t, got.Graph.Series, shared.Graph.Series)

	resp, _ = get(t, ts, "/api/measures/M-404/graph")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts, "/api/graph?graph=%7B")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChipGraph(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts, "/api/chips/ch1/graph")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got graphResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Claims vs payments", got.Graph.Title)
	assert.Equal(t, []string{"M-1", "M-2"}, got.Graph.MeasureIDs)

	resp, _ = get(t, ts, "/api/chips/ch404/graph")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFetchFailureIsBadGateway(t *testing.T) {
	ts, src, _ := newTestServer(t)
	src.Fail("4", errors.New("upstream down"))

	resp, body := get(t, ts, "/api/measures/M-4/graph")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "upstream down")
}

func TestSavedRoutes(t *testing.T) {
	ts, _, db := newTestServer(t)

	resp, body := get(t, ts, "/api/saved")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	_, gotBody := get(t, ts, "/api/measures/M-2/graph")
	var got graphResponse
	require.NoError(t, json.Unmarshal(gotBody, &got))
	_, ok, err := db.Save(context.Background(), "Payments", "All regions", got.Graph)
	require.NoError(t, err)
	require.True(t, ok)

	resp, body = get(t, ts, "/api/saved?category=c1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var graphs []saved.Graph
	require.NoError(t, json.Unmarshal(body, &graphs))
	require.Len(t, graphs, 1)
	assert.Equal(t, "Payments", graphs[0].Title)

	resp, body = get(t, ts, "/api/saved/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "Payments\nAll regions\n2020,2021,\n")
}

func TestSharePayloadRoundTripsThroughQuery(t *testing.T) {
	p := share.Payload{CategoryID: "c1", MeasureID: "M-2", CheckedFilters: []share.CheckedFilter{
		{FilterID: "f-year", CheckedLabels: []string{"2021"}},
		{FilterID: "f-region", CheckedLabels: []string{"North"}},
	}}
	v, err := p.Encode()
	require.NoError(t, err)

	ts, _, _ := newTestServer(t)
	resp, body := get(t, ts, "/api/graph?"+v.Encode())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got graphResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []string{"2021"}, got.Graph.CheckedCategories())
	require.Len(t, got.Graph.Series, 1)
	assert.Equal(t, "North", got.Graph.Series[0].Name)
	assert.Equal(t, []float64{100, 80}, got.Graph.Series[0].Data)
}
