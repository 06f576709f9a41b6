// Package mcphost is an embeddable multi-server host for the Model Context
// Protocol. A [Host] owns a set of connections to independent MCP servers,
// aggregates the tools/resources/resource templates/prompts each server
// exposes into namespaced catalogues, routes invocations to the owning
// server, and brokers server-initiated sampling ("createMessage") requests
// back to an externally supplied handler.
//
// Typical usage:
//
//	h := mcphost.New(mcphost.HostConfig{
//	    HostInfo: mcphost.Implementation{Name: "my-agent", Version: "1.0.0"},
//	    Servers: []mcphost.ServerConfig{
//	        {ID: "fs", Transport: mcphost.TransportStdio, Command: "mcp-server-filesystem"},
//	    },
//	})
//
//	if err := h.Start(ctx); err != nil {
//	    // start never fails outright; per-server failures surface as events
//	}
//	defer h.Stop(ctx)
//
//	tools := h.Tools()
//	result, err := h.CallTool(ctx, "fs", mcphost.CallToolParams{Name: "read_file", Arguments: map[string]any{"path": "/tmp/x"}})
package mcphost

import "time"

// Transport selects the wire mechanism used to reach a single MCP server.
type Transport string

const (
	// TransportStdio spawns a subprocess and speaks MCP over its stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportSSE speaks MCP over an HTTP+Server-Sent-Events pair (the
	// pre-2025-03 "HTTP+SSE" transport some servers still expose).
	TransportSSE Transport = "sse"

	// TransportWebsocket speaks MCP framed as JSON-RPC messages over a single
	// WebSocket connection.
	TransportWebsocket Transport = "websocket"

	// TransportStreamableHTTP speaks the MCP Streamable HTTP transport
	// (a single POST/GET endpoint, optionally upgrading to SSE).
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport kind.
func (t Transport) IsValid() bool {
	switch t {
	case TransportStdio, TransportSSE, TransportWebsocket, TransportStreamableHTTP:
		return true
	default:
		return false
	}
}

// Implementation identifies a protocol participant (host or server) by name
// and version, as exchanged during MCP's initialize handshake.
type Implementation struct {
	Name    string
	Version string
}

// RootsCapability declares whether the host will notify servers when its
// workspace root list changes.
type RootsCapability struct {
	ListChanged bool
}

// HostCapabilities declares what the embedding application is willing to do
// on behalf of connected servers.
type HostCapabilities struct {
	// Sampling, when non-nil, advertises that this host can service
	// server-initiated createMessage requests via the Sampling Broker.
	Sampling *struct{}

	// Roots, when non-nil, advertises root-list support and whether the host
	// will emit listChanged notifications.
	Roots *RootsCapability

	// Experimental carries capability bits not modeled above. The bridge
	// echoes it in its initialize result; the Host does not send it to
	// servers.
	Experimental map[string]any
}

// ServerConfig is the immutable description of one MCP server to connect to.
// Exactly one of the transport-specific field groups is meaningful, selected
// by Transport.
type ServerConfig struct {
	// ID uniquely identifies this server within a Host. Required.
	ID string

	// Name is an optional human-readable label; defaults to ID in logs.
	Name string

	Transport Transport

	// Command and Args launch the server subprocess when Transport is
	// TransportStdio. Command is the executable path or name (resolved via
	// PATH); Args are passed verbatim.
	Command string
	Args    []string

	// Cwd is the working directory for the subprocess. Empty means inherit
	// the host process's working directory.
	Cwd string

	// Env holds additional environment variables injected into the
	// subprocess, merged over the host process's environment (config wins on
	// key collision).
	Env map[string]string

	// URL is the server endpoint for TransportSSE, TransportWebsocket, and
	// TransportStreamableHTTP.
	URL string

	// Headers are additional HTTP headers sent on every request for the
	// URL-based transports (e.g. bearer tokens).
	Headers map[string]string
}

// HostConfig is the full description of a Host's identity, declared
// capabilities, and the servers it should connect to.
type HostConfig struct {
	HostInfo         Implementation
	HostCapabilities HostCapabilities
	Servers          []ServerConfig

	// SamplingTimeout bounds how long the Sampling Broker waits for an
	// external sink to answer a createMessage request. Zero selects the
	// default of 300s.
	SamplingTimeout time.Duration

	// CallTimeout bounds callTool/readResource/getPrompt when the caller
	// supplies no per-call timeout. Zero means no default bound.
	CallTimeout time.Duration
}

// ResourcesCapability describes a server's declared resource-related
// behavior. Per the strict reading of the wire format, Subscribe and
// ListChanged are true only when the server explicitly set them; the
// zero value of this struct means "not declared".
type ResourcesCapability struct {
	Subscribe   bool
	ListChanged bool
	// Templates is true only when the server explicitly declared
	// resources.templates == true, per the strict-template-capability
	// resolution: servers that omit the bit are treated as not supporting
	// resource templates even if they happen to return some.
	Templates bool
}

// PromptsCapability describes a server's declared prompt-related behavior.
type PromptsCapability struct {
	ListChanged bool
}

// ServerCapabilities is the host's snapshot of what one connected server
// declared during initialize. Capability groups that were entirely absent
// from the server's response are nil, distinguishing "not declared" from
// "declared with all fields false".
type ServerCapabilities struct {
	Tools        *struct{}
	Resources    *ResourcesCapability
	Prompts      *PromptsCapability
	Roots        *RootsCapability
	Logging      *struct{}
	Completions  *struct{}
	Experimental map[string]any
}

// AggregatedTool is a tool offered by one connected server, namespaced by
// the server that owns it.
type AggregatedTool struct {
	ServerID    string
	Name        string
	Description string
	InputSchema map[string]any
	Annotations map[string]any
}

// AggregatedResource is a concrete, readable resource offered by one
// connected server.
type AggregatedResource struct {
	ServerID string
	URI      string
	Name     string
	MimeType string
	Size     int64
}

// AggregatedResourceTemplate is a URI template a server can expand into
// concrete resources. Only populated for servers that strictly declare
// resources.templates == true.
type AggregatedResourceTemplate struct {
	ServerID    string
	ID          string
	Name        string
	URITemplate string
	Description string
}

// AggregatedPrompt is a named prompt template offered by one connected
// server.
type AggregatedPrompt struct {
	ServerID    string
	Name        string
	Description string
	Arguments   []PromptArgument
}

// PromptArgument describes one parameter of an AggregatedPrompt.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// Root is a workspace root the host advertises to servers that support
// roots.listChanged notifications.
type Root struct {
	URI  string
	Name string
}

// CallOptions configures a single callTool/readResource/getPrompt
// invocation.
type CallOptions struct {
	// Timeout bounds the call; zero means use the Host's CallTimeout
	// default, and no timeout at all if that is also zero.
	Timeout time.Duration
}

// CallToolParams names a tool and supplies its arguments.
type CallToolParams struct {
	Name      string
	Arguments map[string]any
}

// CallToolResult is the outcome of a tool invocation.
type CallToolResult struct {
	// Content is the concatenation of the result's textual content blocks.
	Content string
	// IsError indicates an application-level tool failure (as opposed to a
	// transport or protocol error, which is returned as a Go error).
	IsError bool
}

// ReadResourceParams selects a resource to read.
type ReadResourceParams struct {
	URI string
}

// ReadResourceResult is the outcome of reading a resource.
type ReadResourceResult struct {
	URI      string
	MimeType string
	Text     string
	Blob     []byte
}

// GetPromptParams selects a prompt and supplies its arguments.
type GetPromptParams struct {
	Name      string
	Arguments map[string]string
}

// GetPromptResult is the outcome of resolving a prompt.
type GetPromptResult struct {
	Description string
	Messages    []PromptMessage
}

// PromptMessage is one rendered message of a resolved prompt.
type PromptMessage struct {
	Role    string
	Content string
}
