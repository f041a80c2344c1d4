// Package emergency owns the process-wide emergency-mode value. The
// manager is the only writer; permission and rate-limit gating happen in
// the API layer before a mutation ever reaches it, which keeps the state
// machine testable on its own.
package emergency

import (
	"sync"
	"time"

	"crowd-safety-service/internal/apperr"
	"crowd-safety-service/internal/models"
)

// Notifier receives each post-transition state, after the mutation has
// committed. Wired to the audit sink and the dashboard hub.
type Notifier func(models.EmergencyMode)

// Manager is a singleton-per-process state machine over INACTIVE/ACTIVE.
// Construct one per process (or per test) and inject it; there is no
// package-level instance.
type Manager struct {
	mu        sync.RWMutex
	state     models.EmergencyMode
	notifiers []Notifier
}

func New(notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// Activate switches emergency mode on, or refreshes it when already
// active. A second, more severe trigger for an already-emergent site is a
// legitimate event, so re-activation updates trigger/area/activatedBy
// instead of failing. An empty areaID means site-wide.
func (m *Manager) Activate(areaID string, trigger models.EmergencyTrigger, adminID string) (models.EmergencyMode, error) {
	if !models.ValidTrigger(trigger) {
		return models.EmergencyMode{}, apperr.Validationf("invalid trigger %q", trigger).WithDetail("field", "trigger")
	}
	if adminID == "" {
		return models.EmergencyMode{}, apperr.Validationf("admin id is required").WithDetail("field", "admin_id")
	}

	now := time.Now()

	m.mu.Lock()
	m.state = models.EmergencyMode{
		Active:      true,
		Trigger:     trigger,
		AreaID:      areaID,
		ActivatedBy: adminID,
		ActivatedAt: &now,
	}
	state := m.state
	m.mu.Unlock()

	m.notify(state)
	return state, nil
}

// Deactivate switches emergency mode off, recording who did it. Calling it
// while already inactive is an idempotent success: duplicate requests are
// expected under client-side network uncertainty.
func (m *Manager) Deactivate(adminID string) (models.EmergencyMode, error) {
	if adminID == "" {
		return models.EmergencyMode{}, apperr.Validationf("admin id is required").WithDetail("field", "admin_id")
	}

	m.mu.Lock()
	if !m.state.Active {
		state := m.state
		m.mu.Unlock()
		return state, nil
	}
	now := time.Now()
	m.state.Active = false
	m.state.DeactivatedBy = adminID
	m.state.DeactivatedAt = &now
	state := m.state
	m.mu.Unlock()

	m.notify(state)
	return state, nil
}

// State returns a consistent snapshot of the current mode.
func (m *Manager) State() models.EmergencyMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Active reports whether emergency mode is on.
func (m *Manager) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Active
}

func (m *Manager) notify(state models.EmergencyMode) {
	for _, fn := range m.notifiers {
		fn(state)
	}
}
