// Package session owns the login state: the single process-wide Session
// holding the auth token, the cached user profile, and the selected role.
// The manager and the auth-expiry hook are the only writers of the auth
// fields; everything else reads.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/store"

	"go.uber.org/zap"
)

// Manager guards the Session. Writers leave it fully consistent before
// releasing the lock: the user profile is present iff the token is.
type Manager struct {
	mu           sync.Mutex
	token        string
	user         *models.UserProfile
	selectedRole models.Role

	store   store.Store
	client  *backend.Client
	log     *zap.Logger
	expired []func()
}

// NewManager constructs a manager over the persistent store.
func NewManager(st store.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: st, log: log}
}

// Bind attaches the backend client and registers this manager as its
// auth-expiry hook, so a 401 anywhere tears the session down before the
// error reaches feature code.
func (m *Manager) Bind(c *backend.Client) {
	m.client = c
	c.OnAuthExpired(func(ctx context.Context) {
		m.Invalidate(ctx)
	})
}

// Token implements backend.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// IsAuthenticated reports whether a token is present.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// User returns a copy of the cached profile.
func (m *Manager) User() (models.UserProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return models.UserProfile{}, false
	}
	return *m.user, true
}

// SelectedRole returns the active role, if one has been chosen.
func (m *Manager) SelectedRole() (models.Role, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectedRole == "" {
		return "", false
	}
	return m.selectedRole, true
}

// SetSelectedRole records and persists the role choice.
func (m *Manager) SetSelectedRole(ctx context.Context, role models.Role) error {
	m.mu.Lock()
	m.selectedRole = role
	m.mu.Unlock()
	return m.store.Set(ctx, store.KeyUserRole, string(role))
}

// ClearSelectedRole forgets the role choice, in memory and in the store.
func (m *Manager) ClearSelectedRole(ctx context.Context) error {
	m.mu.Lock()
	m.selectedRole = ""
	m.mu.Unlock()
	return m.store.Remove(ctx, store.KeyUserRole)
}

// Restore loads token, profile, and role from the persistent store at
// process start. No network call is made. A partial record (one of token or
// profile missing) reads back as logged out and the orphan key is dropped.
func (m *Manager) Restore(ctx context.Context) error {
	token, haveToken, err := m.store.Get(ctx, store.KeyToken)
	if err != nil {
		return err
	}
	rawUser, haveUser, err := m.store.Get(ctx, store.KeyUserInfo)
	if err != nil {
		return err
	}

	if haveToken && haveUser {
		var user models.UserProfile
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			m.log.Warn("stored profile unreadable, discarding session", zap.Error(err))
			haveToken, haveUser = false, false
		} else {
			m.mu.Lock()
			m.token = token
			m.user = &user
			m.mu.Unlock()
		}
	}
	if haveToken != haveUser || (!haveToken && !haveUser) {
		// Tolerate partial writes: a lone key means "not logged in".
		_ = m.store.Remove(ctx, store.KeyToken)
		_ = m.store.Remove(ctx, store.KeyUserInfo)
	}

	if rawRole, ok, err := m.store.Get(ctx, store.KeyUserRole); err == nil && ok {
		if role := models.Role(rawRole); role.Valid() {
			m.mu.Lock()
			m.selectedRole = role
			m.mu.Unlock()
		}
	}
	return nil
}

// Login exchanges username/password credentials for a session.
func (m *Manager) Login(ctx context.Context, req backend.LoginRequest) (models.UserProfile, error) {
	result, err := m.client.Login(ctx, req)
	if err != nil {
		return models.UserProfile{}, err
	}
	return m.adopt(ctx, result)
}

// LoginWx exchanges a WeChat login code for a session.
func (m *Manager) LoginWx(ctx context.Context, req backend.WxLoginRequest) (models.UserProfile, error) {
	result, err := m.client.LoginWx(ctx, req)
	if err != nil {
		return models.UserProfile{}, err
	}
	return m.adopt(ctx, result)
}

// adopt installs a successful login: memory first (token and profile
// together, under one lock), then the persistent store. A store write
// failure is logged, not fatal; the session contract tolerates partial
// persistence.
func (m *Manager) adopt(ctx context.Context, result backend.LoginResult) (models.UserProfile, error) {
	user := result.User
	m.mu.Lock()
	m.token = result.BearerToken()
	m.user = &user
	defaultRole := m.selectedRole == "" && user.Role.Valid()
	m.mu.Unlock()

	if err := m.store.Set(ctx, store.KeyToken, result.BearerToken()); err != nil {
		m.log.Warn("persist token", zap.Error(err))
	}
	if raw, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, store.KeyUserInfo, string(raw)); err != nil {
			m.log.Warn("persist profile", zap.Error(err))
		}
	}
	if defaultRole {
		if err := m.SetSelectedRole(ctx, user.Role); err != nil {
			m.log.Warn("persist role", zap.Error(err))
		}
	}
	return user, nil
}

// Logout clears the in-memory session and the persistent store. Safe to call
// when already logged out. The selected role is a navigation preference, not
// auth state, and survives logout.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()
	_ = m.store.Remove(ctx, store.KeyToken)
	_ = m.store.Remove(ctx, store.KeyUserInfo)
}

// Invalidate is the auth-expiry teardown: identical to Logout, then expiry
// listeners fire so navigation can redirect to the login screen.
func (m *Manager) Invalidate(ctx context.Context) {
	m.log.Debug("session invalidated")
	m.Logout(ctx)
	for _, fn := range m.expired {
		fn()
	}
}

// OnExpired registers a listener invoked after an auth-expiry teardown.
func (m *Manager) OnExpired(fn func()) {
	m.expired = append(m.expired, fn)
}
