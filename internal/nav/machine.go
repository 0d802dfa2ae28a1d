// Package nav is the screen-routing state machine. Two gates apply
// independently: a role must be selected before anything past the role
// picker is reachable, and authenticated screens bounce to the profile/login
// screen when no session exists.
package nav

import (
	"context"
	"sync"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"

	"go.uber.org/zap"
)

// Screen names one navigable view. Both presentation adapters render the
// same screen set.
type Screen string

const (
	ScreenRoleSelect Screen = "role-select"
	ScreenHome       Screen = "home"
	ScreenChat       Screen = "chat"
	ScreenHistory    Screen = "history"
	ScreenProfile    Screen = "profile"
)

// Session is the slice of the session manager the machine consults.
type Session interface {
	IsAuthenticated() bool
	SelectedRole() (models.Role, bool)
	SetSelectedRole(ctx context.Context, role models.Role) error
	ClearSelectedRole(ctx context.Context) error
}

// Machine holds the navigation state: the active screen and the active role.
// The state is transient and rebuilt from the persisted role at startup; it
// is never persisted itself.
type Machine struct {
	mu           sync.Mutex
	activeScreen Screen
	activeRole   models.Role

	session    Session
	log        *zap.Logger
	onRedirect func(reason string)
}

// NewMachine starts on the role-selection screen.
func NewMachine(session Session, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{activeScreen: ScreenRoleSelect, session: session, log: log}
}

// OnRedirect registers the notifier telling the user why a forced redirect
// happened.
func (m *Machine) OnRedirect(fn func(reason string)) {
	m.onRedirect = fn
}

// Active returns the current screen and role ("" while unselected).
func (m *Machine) Active() (Screen, models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeScreen, m.activeRole
}

// Restore rebuilds the role dimension from the persisted selection. With a
// role on record the user lands on that role's home screen; otherwise the
// role picker stays active.
func (m *Machine) Restore() {
	role, ok := m.session.SelectedRole()
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.activeRole = role
		m.activeScreen = ScreenHome
	} else {
		m.activeRole = ""
		m.activeScreen = ScreenRoleSelect
	}
}

// NavigateTo attempts a transition and returns the screen that actually
// became active. Gated transitions redirect immediately: to the role picker
// while no role is selected, and to the profile/login screen for
// authenticated screens without a session.
func (m *Machine) NavigateTo(target Screen) Screen {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeRole == "" && target != ScreenRoleSelect {
		m.activeScreen = ScreenRoleSelect
		m.notify("select a role first")
		return m.activeScreen
	}
	if requiresAuth(target) && !m.session.IsAuthenticated() {
		m.activeScreen = ScreenProfile
		m.notify("please log in first")
		return m.activeScreen
	}
	m.activeScreen = target
	return m.activeScreen
}

// SelectRole persists the choice and lands on that role's home screen.
func (m *Machine) SelectRole(ctx context.Context, role models.Role) error {
	if err := m.session.SetSelectedRole(ctx, role); err != nil {
		return err
	}
	m.mu.Lock()
	m.activeRole = role
	m.activeScreen = ScreenHome
	m.mu.Unlock()
	return nil
}

// ChangeRole clears the active and persisted role and returns to the role
// picker. Auth state is untouched.
func (m *Machine) ChangeRole(ctx context.Context) error {
	err := m.session.ClearSelectedRole(ctx)
	m.mu.Lock()
	m.activeRole = ""
	m.activeScreen = ScreenRoleSelect
	m.mu.Unlock()
	return err
}

// HandleAuthExpired forces the profile/login screen from anywhere. This is
// the one transition not triggered by direct user action; it is wired to the
// session manager's expiry listeners, which fire after the session teardown.
func (m *Machine) HandleAuthExpired() {
	m.mu.Lock()
	m.activeScreen = ScreenProfile
	m.notify("session expired, please log in again")
	m.mu.Unlock()
}

func requiresAuth(s Screen) bool {
	return s == ScreenChat || s == ScreenHistory
}

// notify runs under the lock; keep listeners cheap.
func (m *Machine) notify(reason string) {
	m.log.Debug("navigation redirect", zap.String("reason", reason))
	if m.onRedirect != nil {
		m.onRedirect(reason)
	}
}
