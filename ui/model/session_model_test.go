package model

import (
	"testing"
	"time"
)

func TestSessionModel_Lifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	// No image open: nothing accumulates.
	m.OnTick("", base)
	m.OnTick("", base.Add(3*time.Second))
	if on, total := m.Values(); on != 0 || total != 0 {
		t.Fatalf("idle must not accumulate: on=%v total=%v", on, total)
	}

	m.OnTick("a.png", base.Add(3*time.Second))
	m.OnTick("a.png", base.Add(8*time.Second))
	on, total := m.Values()
	if on != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s on image and total, got on=%v total=%v", on, total)
	}

	// Switching images restarts the per-image clock only.
	m.OnTick("b.png", base.Add(10*time.Second))
	on, total = m.Values()
	if on != 0 || total != 7*time.Second {
		t.Fatalf("after switch got on=%v total=%v", on, total)
	}
	m.OnTick("b.png", base.Add(12*time.Second))
	if on, _ = m.Values(); on != 2*time.Second {
		t.Fatalf("expected 2s on b.png, got %v", on)
	}

	m.OnTick("", base.Add(13*time.Second))
	m.OnTick("", base.Add(20*time.Second))
	on, total = m.Values()
	if on != 0 || total != 10*time.Second {
		t.Fatalf("closing must stop the clock: on=%v total=%v", on, total)
	}
	if m.Visited() != 2 {
		t.Fatalf("expected 2 visited images, got %d", m.Visited())
	}
}

func TestSessionModel_NilSafe(t *testing.T) {
	var m *SessionModel
	m.OnTick("x", time.Now())
	if on, total := m.Values(); on != 0 || total != 0 {
		t.Fatalf("nil model should return zeros")
	}
}
