package mcphost

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SetSamplingHandler installs fn as the in-process sampling handler: every
// server-initiated createMessage request is answered by invoking fn
// directly rather than being relayed to an external WS/SSE sink. This is
// the convenience adapter named in spec §4.7 — it lets an embedding
// application skip the bridge entirely when it already has an LLM call at
// hand.
func (h *Host) SetSamplingHandler(fn func(ctx context.Context, serverID string, params map[string]any) (*SimplifiedSamplingResult, error)) {
	h.sampling.SetInProcessHandler(func(ctx context.Context, serverID string, params *mcpsdk.CreateMessageParams) (*SimplifiedSamplingResult, error) {
		return fn(ctx, serverID, paramsToMap(params))
	})
}

// SamplingBroker exposes the Host's broker so the HTTP/WS bridge can
// register sinks and resolve/reject in-flight requests without reaching
// into Host internals.
func (h *Host) SamplingBroker() *SamplingBroker {
	return h.sampling
}

// SetRootsValidated performs the input validation named in spec §4.7
// (non-null array of objects with string uri and name) before delegating
// to [Host.SetRoots]. The JSON-RPC router and HTTP handlers for
// POST /config/roots should call this rather than SetRoots directly.
func (h *Host) SetRootsValidated(ctx context.Context, roots []Root) error {
	if roots == nil {
		return NewHostError(KindInvalidTransport, "roots must be a non-null array")
	}
	for i, r := range roots {
		if r.URI == "" {
			return NewHostError(KindInvalidTransport, fmt.Sprintf("roots[%d].uri must be a non-empty string", i))
		}
		if r.Name == "" {
			return NewHostError(KindInvalidTransport, fmt.Sprintf("roots[%d].name must be a non-empty string", i))
		}
	}
	return h.SetRoots(ctx, roots)
}
