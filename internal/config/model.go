// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the configuration tree that loader.go builds from
// three overlay layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `VOLUNTEER_`-prefixed environment overrides – highest precedence.
//
// Validation runs right after unmarshal; the binary refuses to start on a
// missing collector URL or a malformed listen address.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

// Collector points at the endpoint that receives sign-ups.
type Collector struct {
	URL string `koanf:"url" validate:"required,url"`
}

// Forms locates form definitions.  Root is searched for
// components/*/forms/*.yaml; relative paths resolve against Paths.Root.
type Forms struct {
	Root string `koanf:"root"`
}

// Session bounds in-memory form state.
type Session struct {
	MaxEntries int `koanf:"max_entries" validate:"min=1"`
}

// Database is optional.  An empty DSN runs the local collector without
// persistence.
type Database struct {
	DSN string `koanf:"dsn"`
}

// CSRF holds the token key, base64url, at least 32 bytes.  Empty means an
// ephemeral key.
type CSRF struct {
	Key string `koanf:"key"`
}

// GeoIP points at an optional GeoLite2-City database.  Empty disables
// geolocation; relative paths resolve against Paths.Root.
type GeoIP struct {
	DB string `koanf:"db"`
}

// Vault names an optional KV-v2 secret holding csrf_key and database_dsn.
// Values already set in YAML or the environment win.
type Vault struct {
	Path string `koanf:"path"`
}

// Paths is resolved at runtime.
type Paths struct {
	Root string
}

// Config is the immutable aggregate returned by Load().
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Collector Collector `koanf:"collector"`
	Forms     Forms     `koanf:"forms"`
	Session   Session   `koanf:"session"`
	Database  Database  `koanf:"database"`
	CSRF      CSRF      `koanf:"csrf"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Vault     Vault     `koanf:"vault"`
	Paths     Paths     `koanf:"-"`
}

// applyDefaults fills values operators usually leave out.
func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Forms.Root == "" {
		c.Forms.Root = "."
	}
	if c.Session.MaxEntries == 0 {
		c.Session.MaxEntries = 10000
	}
}
