package mcphost

import "context"

// HostAPI is the narrower interface the JSON-RPC router and HTTP bridge
// depend on, per the composition-over-inheritance resolution of spec §9:
// rather than a separate "API" type wrapping a "Core" type, callers that
// only need the public surface depend on this interface while [*Host]
// provides the concrete engine plus a few bridge-only extras (SamplingBroker,
// event registration) that don't belong on the narrow contract.
type HostAPI interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	CallTool(ctx context.Context, serverID string, params CallToolParams, opts ...CallOptions) (*CallToolResult, error)
	ReadResource(ctx context.Context, serverID string, params ReadResourceParams, opts ...CallOptions) (*ReadResourceResult, error)
	GetPrompt(ctx context.Context, serverID string, params GetPromptParams, opts ...CallOptions) (*GetPromptResult, error)

	SetRootsValidated(ctx context.Context, roots []Root) error
	CurrentRoots() []Root

	SubscribeResource(ctx context.Context, serverID, uri string) error
	UnsubscribeResource(ctx context.Context, serverID, uri string) error

	SuggestServerForResource(uri string) []Suggestion
	SuggestServerForTool(name string) []Suggestion
	SuggestServerForPrompt(name string) []Suggestion

	Tools() []AggregatedTool
	Resources() []AggregatedResource
	ResourceTemplates() []AggregatedResourceTemplate
	Prompts() []AggregatedPrompt
	ConnectedServers() []string
}

var _ HostAPI = (*Host)(nil)
