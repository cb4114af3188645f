package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spektr-org/statboard/catalog"
)

// ============================================================================
// HTTP SOURCE — GET {baseURL}{name} → JSON array
// ============================================================================

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration // 0 = 30s
	Client  *http.Client  // optional, overrides Timeout
	Logger  *slog.Logger  // optional, discard if nil
}

// HTTPSource reads datasets from the statistics API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTP creates an HTTPSource.
func NewHTTP(cfg HTTPConfig) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &HTTPSource{
		baseURL: cfg.BaseURL,
		client:  client,
		logger:  logger,
	}
}

// Records fetches one dataset.
func (s *HTTPSource) Records(ctx context.Context, name string) ([]catalog.Record, error) {
	url := s.baseURL + name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s returned %d: %s", name, resp.StatusCode, truncate(string(body), 200))
	}

	records, err := DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}

	s.logger.Debug("dataset fetched", "name", name, "records", len(records), "elapsed", time.Since(start))
	return records, nil
}

// DecodeRecords parses a JSON array of objects. A JSON null is an empty
// dataset.
func DecodeRecords(body []byte) ([]catalog.Record, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return []catalog.Record{}, nil
	}

	var records []catalog.Record
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w (body: %.200s)", err, trimmed)
	}
	if records == nil {
		records = []catalog.Record{}
	}
	return records, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
