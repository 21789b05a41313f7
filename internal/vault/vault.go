// internal/vault/vault.go
//
// Vault client wrapper.
//
// Context
// -------
//   - Concurrency-safe wrapper around the HashiCorp Vault Go SDK.
//   - Background token renewal, KV-v2 reads, and per-key caching.
//   - Apply copies csrf_key and database_dsn from one secret into the
//     configuration when operators keep them out of YAML and the
//     environment.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx)                          // during boot.
//  2. err = vault.Apply(ctx, cli, cfg)                     // fill secrets.
//  3. pw, err := cli.GetKV(ctx, path, key, ttl)            // anywhere else.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/yanizio/volunteer/internal/config"
)

// ErrNotFound is returned when the secret or the key does not exist.
var ErrNotFound = errors.New("vault: secret not found")

// Secret keys read by Apply.
const (
	KeyCSRF = "csrf_key"
	KeyDSN  = "database_dsn"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop
// that stops with ctx.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		cache: make(map[string]cached),
	}

	go c.renewLoop(ctx)

	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, secretPath)
	}
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s#%s", ErrNotFound, secretPath, key)
	}

	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}

	return sval, nil
}

// KV is the read side of Client, accepted by Apply.
type KV interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// Apply fills cfg.CSRF.Key and cfg.Database.DSN from cfg.Vault.Path when
// they are empty.  Missing keys are skipped; any other failure is returned.
func Apply(ctx context.Context, kv KV, cfg *config.Config) error {
	if cfg.Vault.Path == "" {
		return nil
	}

	slots := []struct {
		key string
		dst *string
	}{
		{KeyCSRF, &cfg.CSRF.Key},
		{KeyDSN, &cfg.Database.DSN},
	}
	for _, s := range slots {
		if *s.dst != "" {
			continue
		}
		val, err := kv.GetKV(ctx, cfg.Vault.Path, s.key, 0)
		if errors.Is(err, ErrNotFound) {
			zap.S().Debugw("vault key absent", "path", cfg.Vault.Path, "key", s.key)
			continue
		}
		if err != nil {
			return err
		}
		*s.dst = val
		zap.S().Infow("secret loaded from vault", "path", cfg.Vault.Path, "key", s.key)
	}
	return nil
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
renew:
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Renew the current token once to learn its lease.
		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			zap.S().Warnw("vault token renew-self failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			zap.S().Infow("vault token not renewable, sleeping", "for", time.Hour.String())
			backoff(ctx, time.Hour)
			continue
		}

		renewer, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
			Grace:  15 * time.Second,
		})
		if err != nil {
			zap.S().Warnw("vault renewer init failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		go renewer.Start()

		for {
			select {
			case <-ctx.Done():
				renewer.Stop()
				return
			case err := <-renewer.DoneCh():
				renewer.Stop()
				if err != nil {
					zap.S().Warnw("vault token renewal stopped", "err", err)
				}
				backoff(ctx, 15*time.Second)
				continue renew
			case ev := <-renewer.RenewCh():
				if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
					zap.S().Debugw("vault token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
				}
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
