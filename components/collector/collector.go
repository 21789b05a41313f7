// components/collector/collector.go
//
// Local echo collector – receives sign-ups posted by the volunteer form.
//
//------------------------------------------------------------------------------

package collector

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/collector"
	"github.com/yanizio/volunteer/internal/component"
	"github.com/yanizio/volunteer/internal/form"
)

// FormID names the definition records are checked against.
const FormID = "volunteer/signup"

// maxBody caps request bodies.
const maxBody = 64 << 10

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves POST /api/volunteers and GET /api/volunteers/{id}.
type Component struct {
	acceptor *collector.Acceptor
	store    *collector.Store // nil without a database
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "collector" }

// Migrations returns the sign-up table DDL.
func (c *Component) Migrations() []string { return []string{collector.Schema} }

// Init binds the sign-up definition and, when a database is configured, the
// store.
func (c *Component) Init(env component.Env) error {
	fd, ok := form.GetFormDef(FormID)
	if !ok {
		return errors.New("form " + FormID + " not registered")
	}

	var st *collector.Store
	if db := env.GetDB(); db != nil {
		st = collector.NewStore(db)
	} else {
		zap.S().Infow("collector running without persistence")
	}
	c.store = st
	c.acceptor = collector.NewAcceptor(form.NewValidator(fd), st)
	return nil
}

// Routes adds the collector endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Post("/api/volunteers", c.handleCreate)
	r.Get("/api/volunteers/{id}", c.handleGet)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec form.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	s, err := c.acceptor.Accept(r.Context(), rec)
	if err != nil {
		var ve *collector.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": ve.Errors})
			return
		}
		zap.S().Errorw("collector store failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not store record"})
		return
	}

	zap.S().Infow("sign-up accepted", "id", s.ID, "positions", s.Positions)
	writeJSON(w, http.StatusCreated, s)
}

// handleGet returns a stored sign-up.  Without persistence nothing is found.
func (c *Component) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil || c.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	s, err := c.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, collector.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case err != nil:
		zap.S().Errorw("collector lookup failed", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load record"})
	default:
		writeJSON(w, http.StatusOK, s)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Debugw("write response", "err", err)
	}
}
