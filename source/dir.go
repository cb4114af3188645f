package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/statboard/catalog"
	"github.com/spektr-org/statboard/helpers"
)

// ============================================================================
// DIR SOURCE — datasets as files: {name}.json | .yaml | .yml | .csv
// ============================================================================
// Offline snapshots of the API. Extensions are tried in that order; the
// first existing file wins.
// ============================================================================

// ErrNotFound is returned when no file exists for a dataset name.
var ErrNotFound = errors.New("dataset not found")

var dirExtensions = []string{".json", ".yaml", ".yml", ".csv"}

// DirSource reads datasets from a directory.
type DirSource struct {
	dir    string
	logger *slog.Logger
}

// NewDir creates a DirSource rooted at dir.
func NewDir(dir string, logger *slog.Logger) *DirSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DirSource{dir: dir, logger: logger}
}

// Records reads one dataset file.
func (s *DirSource) Records(ctx context.Context, name string) ([]catalog.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid dataset name %q", name)
	}

	for _, ext := range dirExtensions {
		path := filepath.Join(s.dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		records, err := decodeFile(ext, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		s.logger.Debug("dataset loaded", "path", path, "records", len(records))
		return records, nil
	}

	return nil, fmt.Errorf("%s in %s: %w", name, s.dir, ErrNotFound)
}

func decodeFile(ext string, data []byte) ([]catalog.Record, error) {
	switch ext {
	case ".json":
		return DecodeRecords(data)
	case ".csv":
		rows, err := helpers.ParseCSVRows(data)
		if err != nil {
			return nil, err
		}
		records := make([]catalog.Record, len(rows))
		for i, r := range rows {
			records[i] = catalog.Record(r)
		}
		return records, nil
	default:
		var records []catalog.Record
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		if records == nil {
			records = []catalog.Record{}
		}
		return records, nil
	}
}
