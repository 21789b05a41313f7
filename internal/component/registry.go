// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  main applies every
// component's Migrations when a database is configured, then Mount calls
// Init with the shared Env and lets the component add its routes to the
// root router.  chi refuses two Mounts on the same pattern, so components
// register routes directly instead of returning sub-routers.

package component

import (
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/volunteer/internal/config"
)

// Env exposes process-wide resources to components during Init.
type Env interface {
	GetConfig() *config.Config
	GetDB() *sqlx.DB // nil when no database is configured
	GetHTTPClient() *http.Client
}

// Initializer is called once before Routes.
type Initializer interface {
	Init(Env) error
}

// Component contract.
//
// Migrations() may return nil.  Routes() adds both page and API endpoints,
// e.g.
//
//	func (c *Comp) Routes(r chi.Router) {
//		r.Get("/volunteer", c.page)
//		r.Post("/api/volunteers", c.create)
//	}
type Component interface {
	Name() string
	Routes(r chi.Router)
	Migrations() []string
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name, so start-up order
// is stable.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every component with env and mounts its routes on r.
func Mount(r chi.Router, env Env) error {
	for _, c := range All() {
		if err := c.Init(env); err != nil {
			return &InitError{Component: c.Name(), Err: err}
		}
		c.Routes(r)
	}
	return nil
}

// InitError reports which component failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string { return "component " + e.Component + ": " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }
