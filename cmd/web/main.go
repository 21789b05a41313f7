// cmd/web/main.go
//
// Volunteer sign-up service – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Bootstrap console logger, then load configuration
//     (conf/.env → conf/global.yaml → VOLUNTEER_* env).
//
//  2. Start the daily rotating logger (tees to console when in a TTY).
//
//  3. Pull missing secrets from Vault, then open the database and apply
//     component migrations when a DSN is set.
//
//  4. Register form definitions from <forms.root>/components/*/forms.
//
//  5. Build the chi router: request ID, real IP, visitor info, panic recovery, HTTPS
//     redirect, security headers, component routes, and /metrics.
//
//  6. Serve until SIGINT/SIGTERM, then drain in-flight requests.  SIGHUP
//     reloads configuration and reopens the GeoIP database.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/component"
	"github.com/yanizio/volunteer/internal/config"
	"github.com/yanizio/volunteer/internal/database"
	"github.com/yanizio/volunteer/internal/form"
	"github.com/yanizio/volunteer/internal/logger"
	securemw "github.com/yanizio/volunteer/internal/middleware"
	"github.com/yanizio/volunteer/internal/requestinfo"
	"github.com/yanizio/volunteer/internal/server"
	"github.com/yanizio/volunteer/internal/vault"

	_ "github.com/yanizio/volunteer/components/collector"
	_ "github.com/yanizio/volunteer/components/volunteer"
)

// collectorTimeout bounds one round-trip to the collector.  It stays below
// the server WriteTimeout so a slow collector still yields a rendered page.
const collectorTimeout = 20 * time.Second

// env implements component.Env.
type env struct {
	cfg *config.Config
	db  *sqlx.DB
	hc  *http.Client
}

func (e *env) GetConfig() *config.Config   { return e.cfg }
func (e *env) GetDB() *sqlx.DB             { return e.db }
func (e *env) GetHTTPClient() *http.Client { return e.hc }

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// reloadOnHangup re-reads configuration on SIGHUP and swaps in the GeoIP
// database it names.  Other settings are bound at start-up.
func reloadOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := config.Reload(); err != nil {
				zap.S().Errorw("config reload failed; keeping previous", "err", err)
				continue
			}
			db := config.Get().GeoIP.DB
			if err := requestinfo.InitGeo(db); err != nil {
				zap.S().Errorw("geoip reload failed", "file", db, "err", err)
			}
		}
	}
}

func main() {
	logger.Bootstrap()

	cfg, err := config.Load()
	if err != nil {
		zap.S().Fatalw("load config", "err", err)
	}

	log, err := logger.New(logger.Options{
		Root:  cfg.Paths.Root,
		Tee:   runningInTTY(),
		Debug: os.Getenv("VOLUNTEER_DEBUG") != "",
	})
	if err != nil {
		zap.S().Fatalw("start logger", "err", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Secrets from Vault, then the optional database ─────────────
	//
	if cfg.Vault.Path != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			log.Fatalw("vault client", "err", err)
		}
		if err := vault.Apply(ctx, vc, cfg); err != nil {
			log.Fatalw("vault secrets", "path", cfg.Vault.Path, "err", err)
		}
	}

	//
	// ── 1b. Optional database ──────────────────────────────────────────
	//
	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		db, err = database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			log.Fatalw("connect database", "err", err)
		}
		defer db.Close()

		for _, c := range component.All() {
			if err := database.Migrate(ctx, db, c.Migrations()); err != nil {
				log.Fatalw("migrate", "component", c.Name(), "err", err)
			}
		}
	}

	if err := requestinfo.InitGeo(cfg.GeoIP.DB); err != nil {
		log.Fatalw("geoip", "err", err)
	}
	defer requestinfo.CloseGeo()
	go reloadOnHangup(ctx)

	//
	// ── 2.  Form definitions ───────────────────────────────────────────
	//
	if err := form.RegisterForms([]string{cfg.Forms.Root}); err != nil {
		log.Fatalw("register forms", "root", cfg.Forms.Root, "err", err)
	}

	//
	// ── 3.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Recoverer)
	r.Use(securemw.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(securemw.Security)

	e := &env{cfg: cfg, db: db, hc: &http.Client{Timeout: collectorTimeout}}
	if err := component.Mount(r, e); err != nil {
		log.Fatalw("mount components", "err", err)
	}
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/volunteer", http.StatusFound)
	})

	//
	// ── 4.  Serve ───────────────────────────────────────────────────────
	//
	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r)); err != nil {
		log.Fatalw("http server", "err", err)
	}
	log.Infow("stopped")
}
