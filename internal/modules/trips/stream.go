package trips

import (
	"sync"

	"voyage-trips/internal/models"

	"github.com/gorilla/websocket"
)

// EventSink delivers one stream event to the peer.
type EventSink func(models.StreamEvent) error

// Emitter enforces the progress channel contract on top of a raw sink:
// exactly one connection event first, progress values that never decrease,
// and exactly one terminal error or success event after which everything
// else is dropped. Intended for use from a single connection goroutine.
type Emitter struct {
	sink     EventSink
	progress int
	opened   bool
	closed   bool
}

func NewEmitter(sink EventSink) *Emitter {
	return &Emitter{sink: sink}
}

// Connected emits the opening event at progress 0. Repeated calls are
// dropped.
func (e *Emitter) Connected(message, tripID string) error {
	if e.opened || e.closed {
		return nil
	}
	e.opened = true
	return e.sink(models.StreamEvent{
		Type:    models.EventConnection,
		Message: message,
		TripID:  tripID,
	})
}

// Progress emits an intermediate event. Values below the high-water mark
// are raised to it so the emitted sequence stays non-decreasing.
func (e *Emitter) Progress(progress int, message, tripID string) error {
	if !e.opened || e.closed {
		return nil
	}
	if progress < e.progress {
		progress = e.progress
	}
	e.progress = progress
	return e.sink(models.StreamEvent{
		Type:     models.EventProgress,
		Message:  message,
		Progress: progress,
		TripID:   tripID,
	})
}

// Fail emits the terminal error event and seals the emitter.
func (e *Emitter) Fail(message string) error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.sink(models.StreamEvent{
		Type:     models.EventError,
		Message:  message,
		Progress: e.progress,
	})
}

// Succeed emits the terminal success event at progress 100 and seals the
// emitter.
func (e *Emitter) Succeed(message, tripID string, data any) error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.progress = 100
	return e.sink(models.StreamEvent{
		Type:     models.EventSuccess,
		Message:  message,
		Progress: 100,
		TripID:   tripID,
		Data:     data,
	})
}

// Closed reports whether a terminal event has been emitted.
func (e *Emitter) Closed() bool {
	return e.closed
}

// ConnectionManager tracks the live stream connection per trip identifier
// so a disconnect can be released deterministically. One connection per
// trip: a new registration replaces the previous one.
type ConnectionManager struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{active: make(map[string]*websocket.Conn)}
}

func (m *ConnectionManager) Register(tripID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[tripID] = conn
}

func (m *ConnectionManager) Release(tripID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, tripID)
}

// ActiveCount reports the number of registered connections.
func (m *ConnectionManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}
