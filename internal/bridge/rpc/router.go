package rpc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/pkg/mcphost"
)

// Router turns POSTed JSON-RPC request/batch bodies into Host API calls.
type Router struct {
	host     mcphost.HostAPI
	sessions *session.Manager
	hostInfo mcphost.Implementation
	hostCaps mcphost.HostCapabilities
}

// NewRouter constructs a Router bound to host and sessions. hostInfo/hostCaps
// are echoed back verbatim in the `initialize` result.
func NewRouter(host mcphost.HostAPI, sessions *session.Manager, hostInfo mcphost.Implementation, hostCaps mcphost.HostCapabilities) *Router {
	return &Router{host: host, sessions: sessions, hostInfo: hostInfo, hostCaps: hostCaps}
}

// Outcome is the result of handling one POST /mcp body.
type Outcome struct {
	// StatusCode is the HTTP status to return: 200 (≥1 response, including
	// the error responses produced for malformed messages), 202
	// (notifications/responses only), or 204 (an empty batch array).
	StatusCode int
	// Body is the JSON-encoded single object or array to write, mirroring
	// the input shape. Nil when StatusCode is 202 or 204.
	Body []byte
	// NewSessionID is set when this call created a session (a bare
	// `initialize`), for the caller to echo via Mcp-Session-Id.
	NewSessionID string
}

// HandleBody classifies and dispatches the POST /mcp body (a single
// JSON-RPC object or a batch array), per spec §4.5.
//
// sessionID/hasSessionID describe the incoming Mcp-Session-Id header, if
// any; they gate every message except a standalone `initialize`.
func (r *Router) HandleBody(ctx context.Context, sessionID string, hasSessionID bool, body []byte) Outcome {
	var batch []Message
	isBatch := false

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		isBatch = true
		if err := json.Unmarshal(body, &batch); err != nil {
			return Outcome{StatusCode: 200, Body: mustMarshal(errorMessage(nil, CodeInvalidRequest, "malformed batch: "+err.Error(), nil))}
		}
	} else {
		var single Message
		if err := json.Unmarshal(body, &single); err != nil {
			return Outcome{StatusCode: 200, Body: mustMarshal(errorMessage(nil, CodeInvalidRequest, "malformed request: "+err.Error(), nil))}
		}
		batch = []Message{single}
	}

	var newSessionID string
	responses := make([]Message, 0, len(batch))
	anyRequest := false

	for _, m := range batch {
		kind := classify(m)
		switch kind {
		case KindRequest:
			anyRequest = true
			resp, created := r.dispatchOne(ctx, m, &sessionID, &hasSessionID)
			if created != "" {
				newSessionID = created
			}
			responses = append(responses, resp)
		case KindNotification:
			// No response produced, but still session-gated.
			if !hasSessionID || !r.sessionKnown(sessionID) {
				continue
			}
		case KindResponse:
			// Inbound responses (e.g. to a server-initiated request) produce
			// no output; routing them to their origin is out of this
			// router's scope.
		default:
			anyRequest = true
			responses = append(responses, errorMessage(m.ID, CodeInvalidRequest, "malformed message", nil))
		}
	}

	if !anyRequest {
		if len(batch) == 0 {
			return Outcome{StatusCode: 204}
		}
		return Outcome{StatusCode: 202}
	}

	var body2 []byte
	if isBatch {
		body2 = mustMarshal(responses)
	} else if len(responses) > 0 {
		body2 = mustMarshal(responses[0])
	}
	return Outcome{StatusCode: 200, Body: body2, NewSessionID: newSessionID}
}

func (r *Router) sessionKnown(id string) bool {
	_, ok := r.sessions.Get(id)
	return ok
}

func (r *Router) dispatchOne(ctx context.Context, m Message, sessionID *string, hasSessionID *bool) (resp Message, createdSessionID string) {
	if m.Method == "initialize" {
		if *hasSessionID {
			return errorMessage(m.ID, CodeInvalidRequest, "initialize called with an existing Mcp-Session-Id", nil), ""
		}
		st := r.sessions.Create()
		*sessionID = st.ID
		*hasSessionID = true
		result := map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    r.hostCaps,
			"serverInfo":      r.hostInfo,
		}
		return resultMessage(m.ID, result), st.ID
	}

	if !*hasSessionID || !r.sessionKnown(*sessionID) {
		return errorMessage(m.ID, CodeInvalidRequest, "missing or unknown Mcp-Session-Id", nil), ""
	}

	return r.dispatchMethod(ctx, m), ""
}

func (r *Router) dispatchMethod(ctx context.Context, m Message) Message {
	switch {
	case m.Method == "tools/list":
		return resultMessage(m.ID, map[string]any{"tools": r.host.Tools()})
	case m.Method == "resources/list":
		return resultMessage(m.ID, map[string]any{"resources": r.host.Resources()})
	case m.Method == "resources/templates/list":
		return resultMessage(m.ID, map[string]any{"resourceTemplates": r.host.ResourceTemplates()})
	case m.Method == "prompts/list":
		return resultMessage(m.ID, map[string]any{"prompts": r.host.Prompts()})
	case strings.HasPrefix(m.Method, "servers/"):
		return r.dispatchServerMethod(ctx, m)
	default:
		return errorMessage(m.ID, CodeMethodNotFound, "unknown method: "+m.Method, nil)
	}
}

// dispatchServerMethod handles servers/{serverId}/tools/{name}/call,
// servers/{serverId}/resource/read, and servers/{serverId}/prompt/get.
func (r *Router) dispatchServerMethod(ctx context.Context, m Message) Message {
	parts := strings.Split(m.Method, "/")
	if len(parts) < 3 {
		return errorMessage(m.ID, CodeMethodNotFound, "unknown method: "+m.Method, nil)
	}
	serverID := parts[1]

	switch {
	case len(parts) == 5 && parts[2] == "tools" && parts[4] == "call":
		toolName := parts[3]
		var args struct {
			Arguments map[string]any `json:"arguments"`
		}
		_ = json.Unmarshal(m.Params, &args)
		result, err := r.host.CallTool(ctx, serverID, mcphost.CallToolParams{Name: toolName, Arguments: args.Arguments})
		return toResponse(m.ID, result, err)

	case len(parts) == 4 && parts[2] == "resource" && parts[3] == "read":
		var params mcphost.ReadResourceParams
		_ = json.Unmarshal(m.Params, &params)
		result, err := r.host.ReadResource(ctx, serverID, params)
		return toResponse(m.ID, result, err)

	case len(parts) == 4 && parts[2] == "prompt" && parts[3] == "get":
		var params mcphost.GetPromptParams
		_ = json.Unmarshal(m.Params, &params)
		result, err := r.host.GetPrompt(ctx, serverID, params)
		return toResponse(m.ID, result, err)

	default:
		return errorMessage(m.ID, CodeMethodNotFound, "unknown method: "+m.Method, nil)
	}
}

func toResponse(id json.RawMessage, result any, err error) Message {
	if err == nil {
		return resultMessage(id, result)
	}
	if he, ok := err.(*mcphost.HostError); ok {
		return errorMessage(id, CodeInternalError, he.Error(), map[string]any{"kind": he.Kind, "serverId": he.ServerID})
	}
	return errorMessage(id, CodeInternalError, err.Error(), nil)
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"internal marshal error"}}`)
	}
	return b
}
