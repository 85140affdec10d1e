// Package server exposes a grid engine over HTTP.
//
// The API is a thin JSON projection of the engine: every mutation endpoint
// maps to one engine call, and every response uses the same envelope with a
// success flag, a data payload, and a coded error. Named layout persistence
// goes through a pluggable store backend.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	griderrors "github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid/engine"
	"github.com/matzehuels/cardgrid/pkg/store"
)

// =============================================================================
// Server
// =============================================================================

// Server wires a grid engine and a layout store into an HTTP handler.
type Server struct {
	engine  *engine.Engine
	layouts store.Store
	logger  *log.Logger
}

// New creates a server around an engine. The layout store may be nil, in
// which case the /api/layouts endpoints report unsupported.
func New(eng *engine.Engine, layouts store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{engine: eng, layouts: layouts, logger: logger}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleGetLayout)
		r.Put("/layout", s.handleSetLayout)
		r.Post("/items", s.handleAddItem)
		r.Patch("/items/{id}", s.handleUpdateItem)
		r.Delete("/items/{id}", s.handleRemoveItem)
		r.Post("/compact", s.handleCompact)
		r.Post("/batch", s.handleBatch)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Get("/config", s.handleGetConfig)
		r.Get("/stats", s.handleStats)
		r.Get("/perf", s.handlePerf)
		r.Get("/breakpoint", s.handleGetBreakpoint)
		r.Post("/breakpoint", s.handleSwitchBreakpoint)
		r.Post("/width", s.handleObserveWidth)

		r.Route("/layouts", func(r chi.Router) {
			r.Get("/", s.handleListLayouts)
			r.Put("/{name}", s.handleSaveLayout)
			r.Get("/{name}", s.handleGetSavedLayout)
			r.Post("/{name}/load", s.handleLoadLayout)
			r.Delete("/{name}", s.handleDeleteLayout)
		})
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// logRequests is a lightweight request logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// statusForCode maps error codes to HTTP statuses.
func statusForCode(code griderrors.Code) int {
	switch code {
	case griderrors.ErrCodeItemNotFound, griderrors.ErrCodeLayoutNotFound, griderrors.ErrCodeBreakpointNotFound:
		return http.StatusNotFound
	case griderrors.ErrCodeCollision, griderrors.ErrCodeDuplicateID:
		return http.StatusConflict
	case griderrors.ErrCodeInvalidGeometry, griderrors.ErrCodeOutOfBounds,
		griderrors.ErrCodeInvalidConfig, griderrors.ErrCodeInvalidLayout,
		griderrors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case griderrors.ErrCodeHistoryBoundary:
		return http.StatusUnprocessableEntity
	case griderrors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case griderrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
