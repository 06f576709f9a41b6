package session

import "github.com/MrWong99/mcphost/pkg/mcphost"

// Enqueue appends a new event to the session's ring buffer (capped at 100,
// oldest dropped first) and, if an SSE sink is attached, forwards it
// immediately. IDs are session-monotonic and never reused.
func (m *Manager) Enqueue(id string, name string, data any) {
	m.mu.Lock()
	st, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return
	}

	m.mu.Lock()
	st.nextEventID++
	ev := Event{ID: st.nextEventID, Name: name, Data: data}
	st.eventBuffer = append(st.eventBuffer, ev)
	if len(st.eventBuffer) > eventBufferSize {
		st.eventBuffer = st.eventBuffer[len(st.eventBuffer)-eventBufferSize:]
	}
	sink := st.sseSink
	m.mu.Unlock()

	if sink != nil {
		_ = sink.Send(ev)
	}
}

// EventsSince returns every buffered event for id with ID > afterID, in
// order. Used to replay on SSE reconnect via Last-Event-ID.
func (m *Manager) EventsSince(id string, afterID int64) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return nil
	}
	var out []Event
	for _, ev := range st.eventBuffer {
		if ev.ID > afterID {
			out = append(out, ev)
		}
	}
	return out
}

// AttachSink installs sink as id's active SSE sink, closing and draining
// any previous sink first (a session has at most one active sink).
func (m *Manager) AttachSink(id string, sink SSESink) bool {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	prev := st.sseSink
	st.sseSink = sink
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return true
}

// DetachSink clears id's active sink if it is exactly sink (avoids racing a
// concurrent AttachSink from clearing a newer sink).
func (m *Manager) DetachSink(id string, sink SSESink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok || st.sseSink != sink {
		return
	}
	st.sseSink = nil
}

// Subscribe adds topic to id's subscription set.
func (m *Manager) Subscribe(id, topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	st.subscriptions[topic] = struct{}{}
	return true
}

// Unsubscribe removes topic from id's subscription set.
func (m *Manager) Unsubscribe(id, topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	delete(st.subscriptions, topic)
	return true
}

// Matches reports whether id is currently subscribed to any topic in
// topics, per the catch-all/specific matching rules the bridge applies when
// fanning out a broadcast event.
func (m *Manager) Matches(id string, topics ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	for _, t := range topics {
		if _, ok := st.subscriptions[t]; ok {
			return true
		}
	}
	return false
}

// RegisterSampling records a one-shot callback awaiting the given requestID.
func (m *Manager) RegisterSampling(id, requestID string, cb PendingSampling) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	st.pendingSampling[requestID] = cb
	return true
}

// CompleteSampling fires and removes the callback for requestID, if still
// pending. Unknown requestIDs are a silent no-op (the caller logs).
func (m *Manager) CompleteSampling(id, requestID string, result *mcphost.SimplifiedSamplingResult, err error) bool {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	cb, ok := st.pendingSampling[requestID]
	if ok {
		delete(st.pendingSampling, requestID)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	cb(result, err)
	return true
}
