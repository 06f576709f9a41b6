package mcphost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// schemaToMap normalizes a tool's input schema, of any concrete SDK type,
// into a plain JSON-ish map for use in AggregatedTool, matching the
// teacher's own schemaToMap round-trip-through-JSON approach.
func schemaToMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	if m, ok := schema.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

// serverConn is the live state the Host keeps for one connected server: the
// SDK session plus the bookkeeping needed to tear it down and reconnect it.
type serverConn struct {
	cfg     ServerConfig
	session *mcpsdk.ClientSession
	caps    ServerCapabilities
}

// buildTransport constructs the SDK transport implied by cfg, per the
// connect algorithm in spec §4.1 step 1. For stdio it union-merges the
// process environment with cfg.Env (config wins on collision) and resolves
// Cwd. For streamable-http and sse it requires a non-empty URL.
func buildTransport(ctx context.Context, cfg ServerConfig) (mcpsdk.Transport, error) {
	switch cfg.Transport {
	case TransportStdio:
		if cfg.Command == "" {
			return nil, NewHostError(KindInvalidTransport, "stdio server requires a non-empty command").WithServer(cfg.ID)
		}
		cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
		cmd.Dir = cfg.Cwd
		cmd.Env = mergeEnv(os.Environ(), cfg.Env)
		return &mcpsdk.CommandTransport{Command: cmd}, nil

	case TransportStreamableHTTP:
		if cfg.URL == "" {
			return nil, NewHostError(KindInvalidTransport, "streamable-http server requires a non-empty url").WithServer(cfg.ID)
		}
		return &mcpsdk.StreamableClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClientWithHeaders(cfg.Headers),
		}, nil

	case TransportSSE:
		if cfg.URL == "" {
			return nil, NewHostError(KindInvalidTransport, "sse server requires a non-empty url").WithServer(cfg.ID)
		}
		return &mcpsdk.SSEClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClientWithHeaders(cfg.Headers),
		}, nil

	case TransportWebsocket:
		if cfg.URL == "" {
			return nil, NewHostError(KindInvalidTransport, "websocket server requires a non-empty url").WithServer(cfg.ID)
		}
		return newWebsocketTransport(cfg.URL, cfg.Headers), nil

	default:
		return nil, NewHostError(KindInvalidTransport, fmt.Sprintf("unknown transport %q", cfg.Transport)).WithServer(cfg.ID)
	}
}

// mergeEnv union-merges base (typically os.Environ()) with overrides,
// overrides winning on key collision, preserving the KEY=VALUE shape
// exec.Cmd.Env expects.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(overrides))
	for _, kv := range base {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range overrides {
		merged[k] = v
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}

// headerRoundTripper injects a fixed set of headers into every request,
// used to carry per-server auth headers for URL-based transports.
type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return h.next.RoundTrip(req)
}

func httpClientWithHeaders(headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return http.DefaultClient
	}
	return &http.Client{Transport: &headerRoundTripper{headers: headers, next: http.DefaultTransport}}
}

// convertCapabilities translates the SDK's reported server capabilities
// into the host's strict ServerCapabilities snapshot, applying the strict
// resource-templates reading from spec §9: resource templates require
// resources.templates == true explicitly. Roots and Experimental are not
// populated here, so they stay nil in every snapshot.
func convertCapabilities(sdkCaps *mcpsdk.ServerCapabilities) ServerCapabilities {
	var out ServerCapabilities
	if sdkCaps == nil {
		return out
	}
	if sdkCaps.Tools != nil {
		out.Tools = &struct{}{}
	}
	if sdkCaps.Resources != nil {
		out.Resources = &ResourcesCapability{
			Subscribe:   sdkCaps.Resources.Subscribe,
			ListChanged: sdkCaps.Resources.ListChanged,
			Templates:   sdkCaps.Resources.Templates,
		}
	}
	if sdkCaps.Prompts != nil {
		out.Prompts = &PromptsCapability{ListChanged: sdkCaps.Prompts.ListChanged}
	}
	if sdkCaps.Logging != nil {
		out.Logging = &struct{}{}
	}
	if sdkCaps.Completions != nil {
		out.Completions = &struct{}{}
	}
	return out
}

// textContent concatenates every *mcpsdk.TextContent block in content,
// mirroring the teacher's executeMCPTool content-flattening.
func textContent(content []mcpsdk.Content) string {
	var sb strings.Builder
	for _, c := range content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}
