package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	griderrors "github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/engine"
	"github.com/matzehuels/cardgrid/pkg/grid/perf"
	"github.com/matzehuels/cardgrid/pkg/store"
)

// =============================================================================
// Response Envelope
// =============================================================================

// response is the uniform JSON envelope for all API endpoints.
type response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	coded := griderrors.Classify(err)
	status := statusForCode(coded.Code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(response{
		Success: false,
		Error:   &apiError{Code: string(coded.Code), Message: coded.Message},
	})
	if encErr != nil {
		s.logger.Error("encode error response", "err", encErr)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeErr(w, griderrors.Wrap(griderrors.ErrCodeInvalidLayout, err, "invalid request body"))
		return false
	}
	return true
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Layout
// =============================================================================

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.engine.Layout())
}

func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	var items []grid.Item
	if !s.decode(w, r, &items) {
		return
	}
	if err := s.engine.SetLayout(items); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, s.engine.Layout())
}

// =============================================================================
// Items
// =============================================================================

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var item grid.Item
	if !s.decode(w, r, &item) {
		return
	}
	added, err := s.engine.AddItem(item)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch grid.Patch
	if !s.decode(w, r, &patch) {
		return
	}
	updated, err := s.engine.UpdateItem(id, patch)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, updated)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.RemoveItem(chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, s.engine.Layout())
}

// =============================================================================
// Operations
// =============================================================================

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	s.engine.Compact()
	s.writeData(w, http.StatusOK, s.engine.Layout())
}

// batchOp is the wire form of one batch operation.
type batchOp struct {
	Action string          `json:"action"` // add, remove, update, move, resize
	Item   *grid.Item      `json:"item,omitempty"`
	ID     string          `json:"id,omitempty"`
	Patch  *grid.Patch     `json:"patch,omitempty"`
	X      *int            `json:"x,omitempty"`
	Y      *int            `json:"y,omitempty"`
	W      *int            `json:"w,omitempty"`
	H      *int            `json:"h,omitempty"`
}

func (op batchOp) toEngineOp() (engine.Op, error) {
	switch op.Action {
	case "add":
		if op.Item == nil {
			return engine.Op{}, fmt.Errorf("add op requires item")
		}
		return engine.Op{Kind: engine.OpAdd, Item: *op.Item}, nil
	case "remove":
		return engine.Op{Kind: engine.OpRemove, ID: op.ID}, nil
	case "update":
		if op.Patch == nil {
			return engine.Op{}, fmt.Errorf("update op requires patch")
		}
		return engine.Op{Kind: engine.OpUpdate, ID: op.ID, Patch: *op.Patch}, nil
	case "move":
		if op.X == nil || op.Y == nil {
			return engine.Op{}, fmt.Errorf("move op requires x and y")
		}
		return engine.Op{Kind: engine.OpMove, ID: op.ID, X: *op.X, Y: *op.Y}, nil
	case "resize":
		if op.W == nil || op.H == nil {
			return engine.Op{}, fmt.Errorf("resize op requires w and h")
		}
		return engine.Op{Kind: engine.OpResize, ID: op.ID, W: *op.W, H: *op.H}, nil
	default:
		return engine.Op{}, fmt.Errorf("unknown action %q", op.Action)
	}
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var wireOps []batchOp
	if !s.decode(w, r, &wireOps) {
		return
	}

	ops := make([]engine.Op, 0, len(wireOps))
	for i, wo := range wireOps {
		op, err := wo.toEngineOp()
		if err != nil {
			s.writeErr(w, griderrors.Wrap(griderrors.ErrCodeInvalidLayout, err, "batch op %d", i))
			return
		}
		ops = append(ops, op)
	}

	if err := s.engine.BatchUpdate(ops); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, s.engine.Layout())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	layout, err := s.engine.Undo()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, layout)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	layout, err := s.engine.Redo()
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, layout)
}

// =============================================================================
// Introspection
// =============================================================================

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.engine.Config())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, s.engine.Stats())
}

// perfReport is the /api/perf payload.
type perfReport struct {
	Metrics     perf.Metrics `json:"metrics"`
	Score       int          `json:"score"`
	LazyLoading bool         `json:"lazyLoading"`
	DebounceMs  int64        `json:"debounceMs"`
}

func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	mon := s.engine.Monitor()
	s.writeData(w, http.StatusOK, perfReport{
		Metrics:     mon.Metrics(),
		Score:       mon.Score(),
		LazyLoading: mon.LazyLoading(),
		DebounceMs:  mon.DebounceDelay().Milliseconds(),
	})
}

// =============================================================================
// Breakpoints
// =============================================================================

type breakpointState struct {
	Current string `json:"current"`
	Cols    int    `json:"cols"`
}

func (s *Server) handleGetBreakpoint(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, breakpointState{
		Current: s.engine.CurrentBreakpoint(),
		Cols:    s.engine.Config().ColNum,
	})
}

func (s *Server) handleSwitchBreakpoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	change, err := s.engine.SwitchBreakpoint(req.Name)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, change)
}

func (s *Server) handleObserveWidth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WidthPx int `json:"widthPx"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.ObserveWidth(req.WidthPx)
	s.writeData(w, http.StatusAccepted, map[string]int{"widthPx": req.WidthPx})
}

// =============================================================================
// Named Layout Persistence
// =============================================================================

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.layouts == nil {
		s.writeErr(w, griderrors.New(griderrors.ErrCodeUnsupported, "no layout store configured"))
		return false
	}
	return true
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	names, err := s.layouts.List(r.Context())
	if err != nil {
		s.writeErr(w, griderrors.Wrap(griderrors.ErrCodeStoreUnavailable, err, "list layouts"))
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeData(w, http.StatusOK, names)
}

// handleSaveLayout stores the current live layout under the given name.
func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.layouts.Set(r.Context(), name, s.engine.Layout()); err != nil {
		s.writeErr(w, s.classifyStoreErr(err, name))
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"name": name})
}

func (s *Server) handleGetSavedLayout(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	layout, err := s.layouts.Get(r.Context(), name)
	if err != nil {
		s.writeErr(w, s.classifyStoreErr(err, name))
		return
	}
	s.writeData(w, http.StatusOK, layout)
}

// handleLoadLayout replaces the live layout with a stored one.
func (s *Server) handleLoadLayout(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	layout, err := s.layouts.Get(r.Context(), name)
	if err != nil {
		s.writeErr(w, s.classifyStoreErr(err, name))
		return
	}
	if err := s.engine.SetLayout(layout); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeData(w, http.StatusOK, s.engine.Layout())
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.layouts.Delete(r.Context(), name); err != nil {
		s.writeErr(w, s.classifyStoreErr(err, name))
		return
	}
	s.writeData(w, http.StatusOK, map[string]string{"name": name})
}

// classifyStoreErr maps store sentinels to coded errors. Coded errors (name
// validation) pass through untouched.
func (s *Server) classifyStoreErr(err error, name string) error {
	var coded *griderrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, store.ErrNotFound):
		return griderrors.Wrap(griderrors.ErrCodeLayoutNotFound, err, "layout %q not found", name)
	case errors.Is(err, store.ErrCorrupt):
		return griderrors.Wrap(griderrors.ErrCodeStoreCorrupt, err, "layout %q is corrupt", name)
	default:
		return griderrors.Wrap(griderrors.ErrCodeStoreUnavailable, err, "layout store failure")
	}
}
