package sse

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrWong99/mcphost/internal/bridge/session"
)

func TestParseLastEventID(t *testing.T) {
	cases := []struct {
		header  string
		wantOK  bool
		wantVal int64
	}{
		{"", false, 0},
		{"5", true, 5},
		{"not-a-number", false, 0},
	}
	for _, c := range cases {
		v, ok := ParseLastEventID(c.header)
		if ok != c.wantOK || (ok && v != c.wantVal) {
			t.Errorf("ParseLastEventID(%q) = (%d, %v), want (%d, %v)", c.header, v, ok, c.wantVal, c.wantOK)
		}
	}
}

func TestStreamWritesEventFrames(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewStream(rec)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	if err := s.Send(session.Event{ID: 1, Name: "log", Data: map[string]string{"msg": "hi"}}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	s.Close()
	<-s.done

	body := rec.Body.String()
	if !strings.Contains(body, "id: 1") || !strings.Contains(body, "event: log") {
		t.Fatalf("expected event frame in body, got: %q", body)
	}
}

func TestReplayAndAttachReplaysBufferedEvents(t *testing.T) {
	sessions := session.NewManager(0)
	defer sessions.Stop()
	st := sessions.Create()
	sessions.Enqueue(st.ID, "a", nil)
	sessions.Enqueue(st.ID, "b", nil)

	rec := httptest.NewRecorder()
	s, err := NewStream(rec)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	ReplayAndAttach(sessions, st.ID, 0, true, s)
	s.Close()
	<-s.done

	body := rec.Body.String()
	if !strings.Contains(body, "event: a") || !strings.Contains(body, "event: b") {
		t.Fatalf("expected both buffered events replayed, got: %q", body)
	}
}
