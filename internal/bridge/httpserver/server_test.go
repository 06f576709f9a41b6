package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/mcphost/internal/bridge/rpc"
	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/internal/bridge/sse"
	"github.com/MrWong99/mcphost/internal/health"
	"github.com/MrWong99/mcphost/pkg/mcphost"
	"github.com/MrWong99/mcphost/pkg/mcphost/mock"
)

func newTestServer(t *testing.T, authOn bool, keys []string) (*Server, *session.Manager, *mock.Host) {
	t.Helper()
	sessions := session.NewManager(time.Hour)
	t.Cleanup(sessions.Stop)

	h := &mock.Host{}
	hostEngine := mcphost.New(mcphost.HostConfig{})
	broker := hostEngine.SamplingBroker()

	router := rpc.NewRouter(h, sessions, mcphost.Implementation{Name: "mcphost-bridge"}, mcphost.HostCapabilities{})
	ws := sse.NewWSHandler(sessions, broker)
	healthHandler := health.New()

	srv := New(h, sessions, router, ws, broker, nil, healthHandler, Config{
		Endpoint: "/mcp",
		AuthOn:   authOn,
		APIKeys:  keys,
	})
	return srv, sessions, h
}

func TestInitializeThenDeleteSession(t *testing.T) {
	srv, _, _ := newTestServer(t, false, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	sessionID := rec.Header().Get(sessionHeader)
	if sessionID == "" {
		t.Fatal("expected Mcp-Session-Id header")
	}

	delRec := httptest.NewRecorder()
	delReq := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	delReq.Header.Set(sessionHeader, sessionID)
	srv.Handler().ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", delRec.Code)
	}

	postRec := httptest.NewRecorder()
	postReq := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	postReq.Header.Set(sessionHeader, sessionID)
	srv.Handler().ServeHTTP(postRec, postReq)

	var msg rpc.Message
	json.Unmarshal(postRec.Body.Bytes(), &msg)
	if msg.Error == nil {
		t.Fatalf("expected an error response after session deletion, got %+v", msg)
	}
}

func TestDeleteUnknownSessionReturns404(t *testing.T) {
	srv, _, _ := newTestServer(t, false, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Header.Set(sessionHeader, "bogus")
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsMissingKey(t *testing.T) {
	srv, _, _ := newTestServer(t, true, []string{"secret"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredAcceptsValidKey(t *testing.T) {
	srv, _, h := newTestServer(t, true, []string{"secret"})
	h.ConnectedResult = []string{"a"}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-API-Key", "secret")
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetMCPWithoutAcceptHeaderRejected(t *testing.T) {
	srv, sessions, _ := newTestServer(t, false, nil)
	st := sessions.Create()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set(sessionHeader, st.ID)
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetMCPUnknownSessionReturns404(t *testing.T) {
	srv, _, _ := newTestServer(t, false, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(sessionHeader, "bogus")
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPostRootsValidation(t *testing.T) {
	srv, _, h := newTestServer(t, false, nil)
	_ = h

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config/roots", strings.NewReader(`{"roots":[{"uri":"","name":""}]}`))
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid root, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPostRootsSuccess(t *testing.T) {
	srv, _, h := newTestServer(t, false, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config/roots", strings.NewReader(`{"roots":[{"uri":"file:///tmp","name":"tmp"}]}`))
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(h.Roots) != 1 {
		t.Fatalf("expected SetRootsValidated to be called with one root, got %+v", h.Roots)
	}
}

func TestPostRootsPartialNotifyFailureIsStill200(t *testing.T) {
	srv, _, h := newTestServer(t, false, nil)
	h.SetRootsErr = &mcphost.AggregateError{Errors: []*mcphost.HostError{
		mcphost.NewHostError(mcphost.KindRootsUpdateFailed, "roots notification failed").WithServer("a"),
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/config/roots", strings.NewReader(`{"roots":[{"uri":"file:///tmp","name":"tmp"}]}`))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a partial notify failure (roots still accepted), got %d: %s", rec.Code, rec.Body.String())
	}
	if len(h.Roots) != 1 {
		t.Fatalf("expected roots to be persisted despite the notify failure, got %+v", h.Roots)
	}
	if !strings.Contains(rec.Body.String(), "notificationErrors") {
		t.Fatalf("expected the per-server notify failure to be reported in the body, got %s", rec.Body.String())
	}
}

func TestSuggestToolDelegatesToHost(t *testing.T) {
	srv, _, h := newTestServer(t, false, nil)
	h.ToolSuggestions = []mcphost.Suggestion{{ServerID: "a", MatchType: mcphost.MatchName, Confidence: 1.0}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/suggest/tool?name=read_file", nil)
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"a"`) {
		t.Fatalf("expected suggestion in body, got %s", rec.Body.String())
	}
}

func TestHealthzAlwaysOK(t *testing.T) {
	srv, _, _ := newTestServer(t, true, []string{"secret"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz to bypass auth and return 200, got %d", rec.Code)
	}
}
