package triage

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	ctrl   *Controller
	status Status
}

// Manager tracks live assessment sessions and expires inactive ones.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*entry
	inactivityTimeout time.Duration
	onExpire          func(*Controller)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*entry),
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Controller)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Add registers a freshly built controller as an active session.
func (m *Manager) Add(ctrl *Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[ctrl.ID] = &entry{ctrl: ctrl, status: StatusActive}
}

func (m *Manager) Get(sessionID string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[sessionID]
	if !ok || e.status != StatusActive {
		return nil, ErrNotFound
	}
	return e.ctrl, nil
}

// End closes a session: the controller is fully reset (which also releases
// any voice I/O resources) and is no longer reachable via Get.
func (m *Manager) End(sessionID string) (*Controller, error) {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	if !ok || e.status != StatusActive {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	e.status = StatusEnded
	ctrl := e.ctrl
	m.mu.Unlock()

	ctrl.Reset()
	return ctrl, nil
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, e := range m.sessions {
		if e.status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Controller

	m.mu.Lock()
	for _, e := range m.sessions {
		if e.status != StatusActive {
			continue
		}
		if now.Sub(e.ctrl.LastActivityAt()) < m.inactivityTimeout {
			continue
		}
		e.status = StatusEnded
		expired = append(expired, e.ctrl)
	}
	hook := m.onExpire
	m.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Reset()
		if hook != nil {
			hook(ctrl)
		}
	}
}
