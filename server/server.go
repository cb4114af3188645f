// Package server exposes dashboard graphs over HTTP: per-measure graphs,
// chip presets, share-link rehydration and the saved-graph export.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/statboard/engine"
	"github.com/spektr-org/statboard/saved"
	"github.com/spektr-org/statboard/session"
	"github.com/spektr-org/statboard/share"
	"github.com/spektr-org/statboard/store"
)

// Config holds configuration for the server.
type Config struct {
	Store     *store.Store
	Saved     *saved.Store // optional, saved routes answer 404 without it
	Logger    *slog.Logger
	Engine    []engine.Option
	Addr      string
	ShareBase string // origin used for share links in responses
}

// Server serves the dashboard API.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, logger: logger.With(slog.String("module", "server"))}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(middleware.RequestID, middleware.Recoverer, s.logRequests)

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.categories)
		r.Get("/categories/{id}/measures", s.categoryMeasures)
		r.Get("/measures/{id}/graph", s.measureGraph)
		r.Get("/chips/{id}/graph", s.chipGraph)
		r.Get("/graph", s.sharedGraph)
		r.Get("/saved", s.savedList)
		r.Get("/saved/export", s.savedExport)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting server", "addr", s.cfg.Addr)

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// ============================================================================
// HANDLERS
// ============================================================================

// graphResponse is a graph plus the link that reproduces it.
type graphResponse struct {
	Graph     *engine.GraphData `json:"graph"`
	ShareLink string            `json:"shareLink,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.cfg.Store.Categories(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) categoryMeasures(w http.ResponseWriter, r *http.Request) {
	measures, err := s.newSession().LoadCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, measures)
}

func (s *Server) measureGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.newSession().SelectMeasure(r.Context(), chi.URLParam(r, "id"))
	s.respondGraph(w, graph, err)
}

func (s *Server) chipGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.newSession().ApplyChip(r.Context(), chi.URLParam(r, "id"))
	s.respondGraph(w, graph, err)
}

func (s *Server) sharedGraph(w http.ResponseWriter, r *http.Request) {
	p, err := share.Decode(r.URL.Query())
	if err != nil {
		s.fail(w, err)
		return
	}
	graph, err := s.newSession().ApplyShare(r.Context(), p)
	s.respondGraph(w, graph, err)
}

func (s *Server) savedList(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Saved == nil {
		writeError(w, http.StatusNotFound, "saved graphs are not enabled")
		return
	}
	graphs, err := s.cfg.Saved.ListCategory(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if graphs == nil {
		graphs = []saved.Graph{}
	}
	writeJSON(w, http.StatusOK, graphs)
}

func (s *Server) savedExport(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Saved == nil {
		writeError(w, http.StatusNotFound, "saved graphs are not enabled")
		return
	}
	graphs, err := s.cfg.Saved.ListCategory(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="graphs_export_%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	if err := saved.ExportCSV(w, graphs); err != nil {
		s.logger.Error("export failed", "error", err)
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// newSession creates a request-scoped session over the shared store.
func (s *Server) newSession() *session.Session {
	return session.New(session.Config{Store: s.cfg.Store, Logger: s.logger, Engine: s.cfg.Engine})
}

func (s *Server) respondGraph(w http.ResponseWriter, graph *engine.GraphData, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	if graph == nil {
		writeError(w, http.StatusNotFound, "measure has no chartable data")
		return
	}

	resp := graphResponse{Graph: graph}
	if p, err := share.FromGraph(graph); err == nil {
		if link, err := share.URL(s.cfg.ShareBase, p); err == nil {
			resp.ShareLink = link
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail maps an error to a status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrUnknownMeasure),
		errors.Is(err, session.ErrUnknownCategory),
		errors.Is(err, session.ErrUnknownChip):
		status = http.StatusNotFound
	case errors.Is(err, share.ErrInvalidPayload):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrFetch):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
