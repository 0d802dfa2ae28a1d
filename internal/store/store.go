// Package store implements the persistent session store: a small key/value
// surface that survives process restarts and holds the auth token, the cached
// user profile, and the last-selected role.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"
)

// Well-known keys. The values are opaque strings from the store's
// perspective; interpretation belongs to the session layer.
const (
	KeyToken    = "token"
	KeyUserInfo = "userInfo"
	KeyUserRole = "userRole"
)

// Store is the contract every backing implementation satisfies. No
// transactional guarantees exist across keys; callers must tolerate partial
// writes and treat them as "not logged in".
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open selects and connects the configured implementation.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	driver := strings.ToLower(cfg.Store.Driver)
	switch driver {
	case "", "sqlite", "sqlite3", "mysql":
		if driver == "" || driver == "sqlite" {
			driver = "sqlite3"
		}
		return openSQL(driver, cfg)
	case "redis":
		return openRedis(cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// Scoped returns a view of s with every key prefixed. The web adapter uses it
// to keep one store row set per device/browser.
func Scoped(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &scopedStore{inner: s, prefix: prefix + ":"}
}

type scopedStore struct {
	inner  Store
	prefix string
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

// Close is a no-op for scoped views; ownership stays with the parent store.
func (s *scopedStore) Close() error { return nil }
