// Package session implements the bridge's ephemeral per-client state: the
// Session Manager described by the bridge's event-stream design, tracking
// one [State] per Mcp-Session-Id between `initialize` and DELETE/TTL expiry.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/MrWong99/mcphost/pkg/mcphost"
)

const (
	eventBufferSize = 100
	defaultIdleTTL  = time.Hour
	sweepInterval   = time.Minute
)

// Event is one buffered server-sent event.
type Event struct {
	ID    int64
	Name  string
	Data  any
}

// SSESink is the minimal interface a session's attached SSE stream exposes.
// Implemented by internal/bridge/sse.
type SSESink interface {
	// Send writes ev to the underlying stream. Returns an error if the
	// stream is no longer writable.
	Send(ev Event) error
	// Close detaches the sink, draining any pending writes first.
	Close()
}

// PendingSampling is a one-shot completion callback registered while a
// sampling request awaits this session's answer.
type PendingSampling func(result *mcphost.SimplifiedSamplingResult, err error)

// State is the per-session record the Session Manager owns. All fields are
// guarded by the owning [Manager]'s lock; callers never hold a *State
// outside a Manager method.
type State struct {
	ID           string
	lastActivity time.Time

	eventBuffer []Event
	nextEventID int64

	sseSink       SSESink
	subscriptions map[string]struct{}

	pendingSampling map[string]PendingSampling
}

// Manager owns every live [State], keyed by session id. Safe for concurrent
// use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State

	idleTTL time.Duration
	stop    chan struct{}
	stopped bool
}

// NewManager creates a Manager and starts its background idle-sweep timer.
// idleTTL of zero uses the default (1h).
func NewManager(idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	m := &Manager{
		sessions: make(map[string]*State),
		idleTTL:  idleTTL,
		stop:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Create generates a fresh opaque session id, stores its initial state, and
// returns it. Ids are never reused, even after destruction.
func (m *Manager) Create() *State {
	id := newSessionID()
	st := &State{
		ID:              id,
		lastActivity:    time.Now(),
		subscriptions:   make(map[string]struct{}),
		pendingSampling: make(map[string]PendingSampling),
	}
	m.mu.Lock()
	m.sessions[id] = st
	m.mu.Unlock()
	return st
}

// Get returns the session for id, refreshing its lastActivity, or (nil,
// false) if unknown.
func (m *Manager) Get(id string) (*State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	st.lastActivity = time.Now()
	return st, true
}

// Destroy removes the session for id, if present: closes its SSE sink (if
// any), fires every pending sampling callback with an "session closed"
// error, and reports whether anything was removed.
func (m *Manager) Destroy(id string) bool {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	closeSession(st)
	return true
}

// Count returns the number of currently live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Stop halts the sweep timer and destroys every remaining session.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	close(m.stop)
	for _, id := range ids {
		m.Destroy(id)
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTTL)
	m.mu.Lock()
	var expired []*State
	for id, st := range m.sessions {
		if st.lastActivity.Before(cutoff) {
			expired = append(expired, st)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, st := range expired {
		closeSession(st)
	}
}

func closeSession(st *State) {
	if st.sseSink != nil {
		st.sseSink.Close()
		st.sseSink = nil
	}
	for reqID, cb := range st.pendingSampling {
		cb(nil, mcphost.NewHostError(mcphost.KindInternalError, "session closed"))
		delete(st.pendingSampling, reqID)
	}
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failing is not recoverable
	}
	return hex.EncodeToString(b)
}
