package triage

import (
	"errors"
	"testing"
	"time"
)

func TestManagerAddGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	ctrl := NewController("user-1", nil, nil, nil, nil)
	m.Add(ctrl)

	got, err := m.Get(ctrl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != ctrl {
		t.Fatal("Get returned a different controller")
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("ActiveCount = %d, want 1", m.ActiveCount())
	}

	if _, err := m.End(ctrl.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := m.Get(ctrl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after End: %v, want ErrNotFound", err)
	}
	if _, err := m.End(ctrl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second End: %v, want ErrNotFound", err)
	}
	if m.ActiveCount() != 0 {
		t.Fatalf("ActiveCount = %d, want 0", m.ActiveCount())
	}
}

func TestManagerGetUnknown(t *testing.T) {
	m := NewManager(time.Minute)
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: %v, want ErrNotFound", err)
	}
}

func TestManagerExpiresInactiveSessions(t *testing.T) {
	m := NewManager(10 * time.Millisecond)

	var expired []*Controller
	m.SetExpireHook(func(c *Controller) { expired = append(expired, c) })

	stale := NewController("user-1", nil, nil, nil, nil)
	m.Add(stale)

	fresh := NewController("user-2", nil, nil, nil, nil)
	m.Add(fresh)

	time.Sleep(20 * time.Millisecond)
	fresh.Touch()
	m.expireInactive()

	if _, err := m.Get(stale.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("stale session should be expired")
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
	if len(expired) != 1 || expired[0] != stale {
		t.Fatalf("expire hook saw %d sessions", len(expired))
	}
}
