package mcphost

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// wsTransport is a [mcpsdk.Transport] implementation for MCP servers that
// speak JSON-RPC framed one-message-per-text-frame over a plain WebSocket,
// an option some MCP servers offer alongside the standard stdio/SSE/
// streamable-HTTP transports. The official SDK ships the latter three;
// this fills the fourth ServerConfig.Transport kind named in the data
// model using the same library ([github.com/coder/websocket]) the host's
// own inbound /ws bridge endpoint uses.
type wsTransport struct {
	url     string
	headers map[string]string
}

func newWebsocketTransport(url string, headers map[string]string) mcpsdk.Transport {
	return &wsTransport{url: url, headers: headers}
}

// Connect implements mcpsdk.Transport.
func (t *wsTransport) Connect(ctx context.Context) (mcpsdk.Connection, error) {
	header := make(map[string][]string, len(t.headers))
	for k, v := range t.headers {
		header[k] = []string{v}
	}
	conn, _, err := websocket.Dial(ctx, t.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, fmt.Errorf("mcphost: dial websocket %q: %w", t.url, err)
	}
	conn.SetReadLimit(-1)
	return &wsConnection{conn: conn}, nil
}

// wsConnection adapts a coder/websocket connection to the SDK's Connection
// contract: one JSON-RPC message per text frame, in either direction.
type wsConnection struct {
	conn *websocket.Conn
}

// Read implements mcpsdk.Connection.
func (c *wsConnection) Read(ctx context.Context) (mcpsdk.JSONRPCMessage, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return mcpsdk.DecodeMessage(json.RawMessage(data))
}

// Write implements mcpsdk.Connection.
func (c *wsConnection) Write(ctx context.Context, msg mcpsdk.JSONRPCMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("mcphost: encode websocket message: %w", err)
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close implements mcpsdk.Connection.
func (c *wsConnection) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "host closing connection")
}
