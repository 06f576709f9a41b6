package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/pkg/mcphost"
)

const wsPingInterval = 30 * time.Second

// wsIncoming is the union of client->server message shapes the /ws endpoint
// accepts, per spec §4.6.
type wsIncoming struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *wsError        `json:"error,omitempty"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WSHandler serves the /ws endpoint: connection handshake, subscribe /
// unsubscribe bookkeeping, and routing sampling_response / sampling_error
// back to the Sampling Broker via ResolveSimplified / Reject.
type WSHandler struct {
	sessions *session.Manager
	broker   *mcphost.SamplingBroker
}

// NewWSHandler constructs a WSHandler bound to sessions and broker.
func NewWSHandler(sessions *session.Manager, broker *mcphost.SamplingBroker) *WSHandler {
	return &WSHandler{sessions: sessions, broker: broker}
}

// ServeHTTP upgrades the connection, assigns a connection id, registers
// this connection as a sampling sink for the lifetime of the socket, and
// processes subscribe/unsubscribe/sampling_* messages until the client
// disconnects.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, req *http.Request, sessionID string) {
	conn, err := websocket.Accept(w, req, nil)
	if err != nil {
		slog.Warn("ws: accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	connectionID := uuid.NewString()
	sink := &wsSink{conn: conn}
	unregister := h.broker.RegisterSink(sink)
	defer unregister()

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	go h.pingLoop(ctx, conn)

	writeJSON(ctx, conn, map[string]any{"type": "connection", "connectionId": connectionID})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg wsIncoming
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.handleMessage(sessionID, msg)
	}
}

func (h *WSHandler) handleMessage(sessionID string, msg wsIncoming) {
	switch msg.Type {
	case "subscribe":
		h.sessions.Subscribe(sessionID, msg.Topic)
	case "unsubscribe":
		h.sessions.Unsubscribe(sessionID, msg.Topic)
	case "sampling_response":
		h.broker.ResolveSimplified(msg.RequestID, decodeSamplingResult(msg.Result))
	case "sampling_error":
		kind := mcphost.KindInternalError
		message := "sampling rejected by client"
		if msg.Error != nil {
			message = msg.Error.Message
		}
		h.broker.Reject(msg.RequestID, mcphost.NewHostError(kind, message))
	default:
		slog.Warn("ws: unrecognized message type", "type", msg.Type)
	}
}

func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := conn.Ping(pingCtx); err != nil {
				cancel()
				return
			}
			cancel()
		}
	}
}

// wsSink implements [mcphost.Sink] by forwarding sampling requests down one
// WebSocket connection as `{type: sampling_request, ...}`.
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) DeliverSamplingRequest(req mcphost.SamplingRequest) error {
	return writeJSON(context.Background(), s.conn, map[string]any{
		"type":      "sampling_request",
		"requestId": req.RequestID,
		"serverId":  req.ServerID,
		"params":    req.Params,
	})
}

func writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// decodeSamplingResult is a best-effort decode of the client-supplied
// `result` payload into the simplified sampling shape the broker expects
// from in-process completion.
func decodeSamplingResult(raw json.RawMessage) *mcphost.SimplifiedSamplingResult {
	var out mcphost.SimplifiedSamplingResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return &mcphost.SimplifiedSamplingResult{}
	}
	return &out
}
