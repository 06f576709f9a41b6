package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/MrWong99/mcphost/internal/bridge/sse"
	"github.com/MrWong99/mcphost/pkg/mcphost"
)

const sessionHeader = "Mcp-Session-Id"

// handleMCPPost serves POST /mcp: JSON-RPC request/batch/initialize, per
// spec §4.5.
func (s *Server) handleMCPPost(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
		return
	}

	sessionID := req.Header.Get(sessionHeader)
	hasSessionID := sessionID != ""

	out := s.router.HandleBody(req.Context(), sessionID, hasSessionID, body)

	if s.metrics != nil {
		s.metrics.RecordJSONRPCRequest(req.Context(), "POST /mcp")
	}

	if out.NewSessionID != "" {
		w.Header().Set(sessionHeader, out.NewSessionID)
	}
	if out.Body != nil {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(out.StatusCode)
	if out.Body != nil {
		w.Write(out.Body)
	}
}

// handleMCPGet serves GET /mcp: opens an SSE stream for an existing
// session, per spec §4.6.
func (s *Server) handleMCPGet(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Accept"), "text/event-stream") {
		http.Error(w, `{"error":"Accept: text/event-stream required"}`, http.StatusBadRequest)
		return
	}
	sessionID := req.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, `{"error":"Mcp-Session-Id header required"}`, http.StatusBadRequest)
		return
	}
	if _, ok := s.sessions.Get(sessionID); !ok {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
		return
	}

	stream, err := sse.NewStream(w)
	if err != nil {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	lastEventID, hasLastEventID := sse.ParseLastEventID(req.Header.Get("Last-Event-ID"))
	sse.ReplayAndAttach(s.sessions, sessionID, lastEventID, hasLastEventID, stream)
	sse.WaitClientClose(req.Context(), s.sessions, sessionID, stream)
}

// handleMCPDelete serves DELETE /mcp: destroys a session.
func (s *Server) handleMCPDelete(w http.ResponseWriter, req *http.Request) {
	sessionID := req.Header.Get(sessionHeader)
	if sessionID == "" || !s.sessions.Destroy(sessionID) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type samplingResponseBody struct {
	RequestID string          `json:"requestId"`
	Result    json.RawMessage `json:"result"`
}

type samplingErrorBody struct {
	RequestID string `json:"requestId"`
	Error     struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    any    `json:"data,omitempty"`
	} `json:"error"`
}

// handleSamplingResponse serves POST /mcp/sampling_response.
func (s *Server) handleSamplingResponse(w http.ResponseWriter, req *http.Request) {
	var body samplingResponseBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"malformed body"}`, http.StatusBadRequest)
		return
	}
	var result mcphost.SimplifiedSamplingResult
	_ = json.Unmarshal(body.Result, &result)
	s.broker.ResolveSimplified(body.RequestID, &result)
	w.WriteHeader(http.StatusNoContent)
}

// handleSamplingError serves POST /mcp/sampling_error.
func (s *Server) handleSamplingError(w http.ResponseWriter, req *http.Request) {
	var body samplingErrorBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"malformed body"}`, http.StatusBadRequest)
		return
	}
	s.broker.Reject(body.RequestID, mcphost.NewHostError(mcphost.KindInternalError, body.Error.Message))
	w.WriteHeader(http.StatusNoContent)
}

// handleWS serves GET /ws. Auth (when enabled) is checked here, before the
// websocket upgrade, rather than inside [sse.WSHandler], since header or
// query-param credentials are an HTTP-layer concern per spec §6.
func (s *Server) handleWS(w http.ResponseWriter, req *http.Request) {
	if s.cfg.AuthOn {
		key := req.Header.Get("X-API-Key")
		if key == "" {
			key = req.URL.Query().Get("api_key")
		}
		if !s.keyValid(key) {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
	}

	sessionID := req.Header.Get(sessionHeader)
	if sessionID == "" {
		sessionID = req.URL.Query().Get("sessionId")
	}

	s.ws.ServeHTTP(w, req, sessionID)
}
