package trips

import (
	"testing"

	"voyage-trips/internal/models"
)

func collectEvents(events *[]models.StreamEvent) EventSink {
	return func(ev models.StreamEvent) error {
		*events = append(*events, ev)
		return nil
	}
}

func TestEmitterHappyPath(t *testing.T) {
	var events []models.StreamEvent
	e := NewEmitter(collectEvents(&events))

	e.Connected("connected", "")
	e.Progress(10, "working", "t1")
	e.Progress(70, "almost", "t1")
	e.Succeed("done", "t1", nil)

	if len(events) != 4 {
		t.Fatalf("emitted %d events; want 4", len(events))
	}
	if events[0].Type != models.EventConnection {
		t.Errorf("first event type = %q; want connection", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != models.EventSuccess || last.Progress != 100 {
		t.Errorf("last event = %+v; want success at 100", last)
	}
}

func TestEmitterClampsRegressingProgress(t *testing.T) {
	var events []models.StreamEvent
	e := NewEmitter(collectEvents(&events))

	e.Connected("connected", "")
	e.Progress(50, "half", "")
	e.Progress(30, "late update", "")

	if got := events[len(events)-1].Progress; got != 50 {
		t.Errorf("clamped progress = %d; want 50", got)
	}
}

func TestEmitterSingleTerminalEvent(t *testing.T) {
	var events []models.StreamEvent
	e := NewEmitter(collectEvents(&events))

	e.Connected("connected", "")
	e.Fail("boom")
	e.Succeed("done", "t1", nil)
	e.Progress(99, "late", "t1")
	e.Fail("boom again")

	terminals := 0
	for _, ev := range events {
		if ev.Type == models.EventError || ev.Type == models.EventSuccess {
			terminals++
		}
	}
	if terminals != 1 {
		t.Errorf("terminal events = %d; want exactly 1", terminals)
	}
	if !e.Closed() {
		t.Error("emitter not closed after terminal event")
	}
	if last := events[len(events)-1]; last.Type != models.EventError {
		t.Errorf("last event type = %q; want the error terminal", last.Type)
	}
}

func TestEmitterProgressBeforeConnectionDropped(t *testing.T) {
	var events []models.StreamEvent
	e := NewEmitter(collectEvents(&events))

	e.Progress(10, "too early", "")
	if len(events) != 0 {
		t.Errorf("emitted %d events before connection; want 0", len(events))
	}
}

func TestConnectionManagerRegisterRelease(t *testing.T) {
	m := NewConnectionManager()

	m.Register("t1", nil)
	m.Register("t2", nil)
	if got := m.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d; want 2", got)
	}

	// Re-registering the same trip replaces, not accumulates.
	m.Register("t1", nil)
	if got := m.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount after re-register = %d; want 2", got)
	}

	m.Release("t1")
	m.Release("t2")
	if got := m.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after release = %d; want 0", got)
	}
}
