// Package saved persists chart snapshots the user wants to keep, and exports
// them as a spreadsheet-ready CSV.
package saved

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/spektr-org/statboard/engine"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound reports an unknown saved graph id.
var ErrNotFound = errors.New("saved graph not found")

// Graph is one saved snapshot.
type Graph struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	CategoryID string            `json:"categoryId"`
	Data       *engine.GraphData `json:"data"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Store is a SQLite-backed collection of saved graphs.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and runs pending
// migrations. Use ":memory:" for a throwaway store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one connection: every :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger.With(slog.String("module", "saved"))}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// ============================================================================
// OPERATIONS
// ============================================================================

// Save stores a snapshot of graph. A graph equal to one already saved is
// not stored again: saved is false and id is the existing entry's.
func (s *Store) Save(ctx context.Context, title, subtitle string, graph *engine.GraphData) (id string, saved bool, err error) {
	if graph == nil {
		return "", false, fmt.Errorf("save graph: nothing to save")
	}
	raw, err := json.Marshal(graph)
	if err != nil {
		return "", false, fmt.Errorf("marshal graph: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := list(ctx, tx, "")
	if err != nil {
		return "", false, err
	}
	for _, g := range existing {
		if engine.SnapshotsEqual(g.Data, graph) {
			s.logger.Debug("duplicate graph not saved", "existing", g.ID)
			return g.ID, false, nil
		}
	}

	id = uuid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO saved_graphs (id, title, subtitle, category_id, graph, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, title, subtitle, graph.CategoryID, string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", false, fmt.Errorf("insert saved graph: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("graph saved", "id", id, "category", graph.CategoryID)
	return id, true, nil
}

// List returns the saved graphs in save order.
func (s *Store) List(ctx context.Context) ([]Graph, error) {
	return list(ctx, s.db, "")
}

// ListCategory returns the saved graphs of one category.
func (s *Store) ListCategory(ctx context.Context, categoryID string) ([]Graph, error) {
	return list(ctx, s.db, categoryID)
}

// Get returns one saved graph.
func (s *Store) Get(ctx context.Context, id string) (Graph, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, subtitle, category_id, graph, created_at FROM saved_graphs WHERE id = ?`, id)
	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graph{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Graph{}, fmt.Errorf("get saved graph: %w", err)
	}
	return g, nil
}

// Remove deletes one saved graph.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_graphs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove saved graph: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear deletes every saved graph.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saved_graphs`); err != nil {
		return fmt.Errorf("clear saved graphs: %w", err)
	}
	return nil
}

// CategoryIDs returns the distinct categories having saved graphs, in order
// of first save.
func (s *Store) CategoryIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id FROM saved_graphs GROUP BY category_id ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ============================================================================
// HELPERS
// ============================================================================

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func list(ctx context.Context, q querier, categoryID string) ([]Graph, error) {
	query := `SELECT id, title, subtitle, category_id, graph, created_at FROM saved_graphs`
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY rowid`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query saved graphs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var graphs []Graph
	for rows.Next() {
		g, err := scanGraph(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved graph: %w", err)
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

func scanGraph(sc scanner) (Graph, error) {
	var g Graph
	var raw, created string
	if err := sc.Scan(&g.ID, &g.Title, &g.Subtitle, &g.CategoryID, &raw, &created); err != nil {
		return Graph{}, err
	}
	g.Data = &engine.GraphData{}
	if err := json.Unmarshal([]byte(raw), g.Data); err != nil {
		return Graph{}, fmt.Errorf("decode graph %s: %w", g.ID, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		g.CreatedAt = t
	}
	return g, nil
}
