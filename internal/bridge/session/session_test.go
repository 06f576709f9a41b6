package session

import (
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/mcphost/pkg/mcphost"
)

func TestCreateGetDestroy(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()

	st := m.Create()
	if st.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	got, ok := m.Get(st.ID)
	if !ok || got.ID != st.ID {
		t.Fatalf("Get did not return the created session")
	}
	if !m.Destroy(st.ID) {
		t.Fatal("expected Destroy to report removal")
	}
	if m.Destroy(st.ID) {
		t.Fatal("expected second Destroy to report no removal")
	}
	if _, ok := m.Get(st.ID); ok {
		t.Fatal("expected Get to fail after destroy")
	}
}

func TestEventBufferMonotonicAndCapped(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()

	for i := 0; i < 150; i++ {
		m.Enqueue(st.ID, "log", i)
	}

	events := m.EventsSince(st.ID, 0)
	if len(events) != eventBufferSize {
		t.Fatalf("expected buffer capped at %d, got %d", eventBufferSize, len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].ID <= events[i-1].ID {
			t.Fatalf("expected strictly increasing ids, got %d then %d", events[i-1].ID, events[i].ID)
		}
	}
}

func TestEventsSinceFiltersByLastEventID(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()
	m.Enqueue(st.ID, "a", nil)
	m.Enqueue(st.ID, "b", nil)
	m.Enqueue(st.ID, "c", nil)

	events := m.EventsSince(st.ID, 1)
	if len(events) != 2 {
		t.Fatalf("expected 2 events after id=1, got %d", len(events))
	}
}

type fakeSink struct {
	sent   []Event
	closed bool
}

func (f *fakeSink) Send(ev Event) error { f.sent = append(f.sent, ev); return nil }
func (f *fakeSink) Close()              { f.closed = true }

func TestAttachSinkReceivesSubsequentEvents(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()
	sink := &fakeSink{}
	m.AttachSink(st.ID, sink)
	m.Enqueue(st.ID, "x", nil)
	if len(sink.sent) != 1 {
		t.Fatalf("expected sink to receive 1 event, got %d", len(sink.sent))
	}
}

func TestAttachSinkClosesPrevious(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()
	first := &fakeSink{}
	second := &fakeSink{}
	m.AttachSink(st.ID, first)
	m.AttachSink(st.ID, second)
	if !first.closed {
		t.Fatal("expected first sink to be closed when replaced")
	}
}

func TestSubscriptionMatching(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()
	m.Subscribe(st.ID, "resource:file:///a")
	if !m.Matches(st.ID, "resource:file:///a") {
		t.Fatal("expected match on subscribed topic")
	}
	if m.Matches(st.ID, "resource:file:///b") {
		t.Fatal("expected no match on unrelated topic")
	}
	m.Unsubscribe(st.ID, "resource:file:///a")
	if m.Matches(st.ID, "resource:file:///a") {
		t.Fatal("expected no match after unsubscribe")
	}
}

func TestSamplingExactlyOnceViaManager(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()

	calls := 0
	m.RegisterSampling(st.ID, "req-1", func(result *mcphost.SimplifiedSamplingResult, err error) {
		calls++
	})
	if !m.CompleteSampling(st.ID, "req-1", &mcphost.SimplifiedSamplingResult{}, nil) {
		t.Fatal("expected first completion to succeed")
	}
	if m.CompleteSampling(st.ID, "req-1", &mcphost.SimplifiedSamplingResult{}, nil) {
		t.Fatal("expected second completion for the same id to be a no-op")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one callback invocation, got %d", calls)
	}
}

func TestDestroyFiresPendingSamplingWithSessionClosed(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()

	var gotErr error
	m.RegisterSampling(st.ID, "req-1", func(_ *mcphost.SimplifiedSamplingResult, err error) {
		gotErr = err
	})
	m.Destroy(st.ID)

	var he *mcphost.HostError
	if !errors.As(gotErr, &he) || he.Kind != mcphost.KindInternalError {
		t.Fatalf("expected INTERNAL_ERROR session closed, got %v", gotErr)
	}
}

func TestDestroyClosesSink(t *testing.T) {
	m := NewManager(time.Hour)
	defer m.Stop()
	st := m.Create()
	sink := &fakeSink{}
	m.AttachSink(st.ID, sink)
	m.Destroy(st.ID)
	if !sink.closed {
		t.Fatal("expected sink to be closed on destroy")
	}
}
