// Package sse implements the SSE/WS Bridge: per-session event streaming
// with Last-Event-ID replay and heartbeats, and the /ws endpoint carrying
// subscriptions and the sampling response/error return leg.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrWong99/mcphost/internal/bridge/session"
)

const heartbeatInterval = 15 * time.Second

// Stream adapts an http.ResponseWriter into a [session.SSESink], writing
// `id: <n>\nevent: <name>\ndata: <json>\n\n` frames and a heartbeat comment
// every 15s while attached.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	writes  chan session.Event
	done    chan struct{}

	closeOnce sync.Once
}

// NewStream begins an SSE response: writes headers, an initial blank line,
// and starts the background write/heartbeat loop. The caller must have
// already validated the session and Accept header.
func NewStream(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("sse: response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "\n")
	flusher.Flush()

	s := &Stream{w: w, flusher: flusher, writes: make(chan session.Event, 32), done: make(chan struct{})}
	go s.loop()
	return s, nil
}

// Send enqueues ev for delivery on the stream's write loop.
func (s *Stream) Send(ev session.Event) error {
	select {
	case s.writes <- ev:
		return nil
	case <-s.done:
		return fmt.Errorf("sse: stream closed")
	}
}

// Close stops the write/heartbeat loop, draining any already-queued writes
// first. Calling Close more than once has no further effect.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.writes) })
}

func (s *Stream) loop() {
	defer close(s.done)
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-s.writes:
			if !ok {
				return
			}
			s.writeEvent(ev)
		case <-ticker.C:
			fmt.Fprint(s.w, ": heartbeat\n\n")
			s.flusher.Flush()
		}
	}
}

func (s *Stream) writeEvent(ev session.Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		data = []byte(`null`)
	}
	fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, data)
	s.flusher.Flush()
}

// ReplayAndAttach replays every buffered event after lastEventID (if
// present), then attaches stream as the session's live sink.
func ReplayAndAttach(sessions *session.Manager, sessionID string, lastEventID int64, hasLastEventID bool, stream *Stream) {
	if hasLastEventID {
		for _, ev := range sessions.EventsSince(sessionID, lastEventID) {
			stream.writeEvent(ev)
		}
	}
	sessions.AttachSink(sessionID, stream)
}

// WaitClientClose blocks until ctx is done (the request context is canceled
// when the client disconnects), then detaches stream and stops its loop.
func WaitClientClose(ctx context.Context, sessions *session.Manager, sessionID string, stream *Stream) {
	<-ctx.Done()
	sessions.DetachSink(sessionID, stream)
	stream.Close()
}

// ParseLastEventID parses the Last-Event-ID header value, per spec: only an
// integer-parseable value triggers replay.
func ParseLastEventID(header string) (int64, bool) {
	if header == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
