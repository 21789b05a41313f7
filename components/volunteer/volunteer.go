// components/volunteer/volunteer.go
//
// Volunteer sign-up component – the form page, its change endpoint, and the
// submit handler.
//
// Context
//   Each browser owns one form.Form held in the session store.  The first
//   change or submit creates it; until then page views render a fresh,
//   unstored form.  The page script posts every input event to
//   /volunteer/change and patches inline errors and the submit button from
//   the JSON answer.  Browsers without
//   scripting post the whole form to /volunteer, which replays each field
//   through the same Change path before submitting.
//
//------------------------------------------------------------------------------

package volunteer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/collector"
	"github.com/yanizio/volunteer/internal/component"
	"github.com/yanizio/volunteer/internal/form"
	"github.com/yanizio/volunteer/internal/requestinfo"
	"github.com/yanizio/volunteer/internal/session"
)

// FormID is the definition rendered by this component.
const FormID = "volunteer/signup"

//go:embed assets/form.js
var formJS []byte

var pageTpl = template.Must(template.New("volunteer").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Form}}
<script src="/volunteer/form.js" defer></script>
</body>
</html>
`))

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the sign-up page.
type Component struct {
	def      *form.FormDef
	csrf     *form.CSRF
	sessions *session.Store
	newForm  func() *form.Form
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "volunteer" }

// Migrations returns nil; form state lives in memory only.
func (c *Component) Migrations() []string { return nil }

// Init wires the definition, the collector client, and the session store.
func (c *Component) Init(env component.Env) error {
	fd, ok := form.GetFormDef(FormID)
	if !ok {
		return errors.New("form " + FormID + " not registered")
	}
	cfg := env.GetConfig()

	csrf, err := form.NewCSRF(cfg.CSRF.Key)
	if err != nil {
		return err
	}

	v := form.NewValidator(fd)
	client := collector.NewClient(cfg.Collector.URL, env.GetHTTPClient())

	c.def = fd
	c.csrf = csrf
	c.newForm = func() *form.Form { return form.New(v, client) }
	c.sessions = session.NewStore(cfg.Session.MaxEntries, func() session.Holder {
		return c.newForm()
	})
	zap.S().Infow("volunteer form ready", "collector", cfg.Collector.URL, "max_sessions", cfg.Session.MaxEntries)
	return nil
}

// Routes adds the page, the script, and the event endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get("/volunteer", c.handlePage)
	r.Post("/volunteer", c.handleSubmit)
	r.Get("/volunteer/form.js", c.handleScript)
	r.Get("/volunteer/state", c.handleState)
	r.Post("/volunteer/change", c.handleChange)
	r.Post("/volunteer/leave", c.handleLeave)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, c.current(r))
}

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	f := c.holder(w, r)

	log := zap.S().With("request_id", middleware.GetReqID(r.Context())).
		With(requestinfo.FromContext(r.Context()).Fields()...)

	err := form.HandleSubmit(f, c.csrf, r)
	switch {
	case err == nil:
		log.Infow("sign-up submitted")
	case errors.Is(err, form.ErrCSRF):
		log.Warnw("sign-up token rejected")
		c.render(w, r, http.StatusForbidden, f)
		return
	case form.IsUserError(err):
		log.Debugw("sign-up not ready")
	case errors.Is(err, form.ErrDisposed):
		f = c.holder(w, r)
	default:
		log.Errorw("sign-up submission failed", "err", err)
	}
	c.render(w, r, http.StatusOK, f)
}

func (c *Component) handleChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := c.csrf.Verify(token(r)); err != nil {
		http.Error(w, "security token invalid", http.StatusForbidden)
		return
	}

	f := c.holder(w, r)
	err := f.Change(r.PostForm.Get("name"), r.PostForm.Get("value"))
	switch {
	case errors.Is(err, form.ErrUnknownField):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, form.ErrDisposed):
		http.Error(w, "session expired", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, f.Snapshot())
}

func (c *Component) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, c.current(r).Snapshot())
}

// handleLeave drops the visitor's form, the way a page unmount would.
func (c *Component) handleLeave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}
	if err := c.csrf.Verify(token(r)); err != nil {
		http.Error(w, "security token invalid", http.StatusForbidden)
		return
	}
	c.sessions.End(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (c *Component) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(formJS)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// holder returns the visitor's state holder, starting a session if needed.
func (c *Component) holder(w http.ResponseWriter, r *http.Request) *form.Form {
	return c.sessions.Acquire(w, r).(*form.Form)
}

// current returns the visitor's form for display.  Visitors without a live
// session see a fresh form that is not stored.
func (c *Component) current(r *http.Request) *form.Form {
	if h, ok := c.sessions.Lookup(r); ok {
		return h.(*form.Form)
	}
	return c.newForm()
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, f *form.Form) {
	tok, err := c.csrf.Issue()
	if err != nil {
		zap.S().Errorw("issue csrf token", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	body, err := form.RenderForm(c.def, f.Snapshot(), form.RenderOptions{
		Action:    r.URL.Path,
		CSRFToken: tok,
	})
	if err != nil {
		zap.S().Errorw("render form", "form", c.def.ID, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pageTpl.Execute(w, map[string]any{"Title": c.def.Title, "Form": body}); err != nil {
		zap.S().Errorw("render page", "err", err)
	}
}

// token reads the CSRF token from the header the page script sends, or from
// the posted form.
func token(r *http.Request) string {
	if t := r.Header.Get("X-CSRF-Token"); t != "" {
		return t
	}
	return r.PostForm.Get("csrf_token")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Debugw("write response", "err", err)
	}
}
