// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` from three layers (highest precedence
last):

  1. Optional `conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `VOLUNTEER_`, where `__` maps to “.”
     (e.g., `VOLUNTEER_COLLECTOR__URL → collector.url`).

The merged tree is unmarshalled into typed structs, defaulted, validated,
enriched with the runtime root, and cached in an `atomic.Pointer` for
lock-free reads.  `Reload()` repeats the whole sequence; the process calls it
on SIGHUP.

Instrumentation
---------------
  • DEBUG: root discovery, YAML read.
  • ERROR: YAML parse, env overlay, unmarshal, validation failures.
  • INFO:  final “config loaded” with key highlights.
  • Logs go through `zap.S()` so they surface even before the file logger
    is installed.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix marks environment overrides.
const EnvPrefix = "VOLUNTEER_"

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves VOLUNTEER_ROOT or climbs directories until
// conf/global.yaml is found.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, fmt.Errorf("load %s: %w", yamlPath, err)
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	cfg.Paths.Root = root
	if !filepath.IsAbs(cfg.Forms.Root) {
		cfg.Forms.Root = filepath.Join(root, cfg.Forms.Root)
	}
	if cfg.GeoIP.DB != "" && !filepath.IsAbs(cfg.GeoIP.DB) {
		cfg.GeoIP.DB = filepath.Join(root, cfg.GeoIP.DB)
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("validate config: %w", err)
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"collector", cfg.Collector.URL,
		"database", cfg.Database.DSN != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the most recently loaded Config.
func Get() *Config { return current.Load() }

// Reload re-reads every layer.  On failure the previous Config stays
// current.
func Reload() error { _, err := Load(); return err }
