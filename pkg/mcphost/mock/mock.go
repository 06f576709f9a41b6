// Package mock provides an in-memory test double for [mcphost.HostAPI].
//
// [Host] records every method call for assertion in tests and exposes
// exported fields that control what it returns. It is safe for concurrent
// use via an internal [sync.Mutex], mirroring the teacher's mock.Host
// pattern for the narrower mcphost.HostAPI surface.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/mcphost/pkg/mcphost"
)

// Call records the name and arguments of a single method invocation.
type Call struct {
	Method string
	Args   []any
}

// Host is a configurable test double for [mcphost.HostAPI].
// All exported *Err fields default to nil (success); all exported *Result
// fields default to nil / zero values.
type Host struct {
	mu    sync.Mutex
	calls []Call

	StartErr error
	StopErr  error

	CallToolResult *mcphost.CallToolResult
	CallToolErr    error

	ReadResourceResult *mcphost.ReadResourceResult
	ReadResourceErr    error

	GetPromptResult *mcphost.GetPromptResult
	GetPromptErr    error

	SetRootsErr error
	Roots       []mcphost.Root

	SubscribeErr   error
	UnsubscribeErr error

	ResourceSuggestions []mcphost.Suggestion
	ToolSuggestions     []mcphost.Suggestion
	PromptSuggestions   []mcphost.Suggestion

	ToolsResult      []mcphost.AggregatedTool
	ResourcesResult  []mcphost.AggregatedResource
	TemplatesResult  []mcphost.AggregatedResourceTemplate
	PromptsResult    []mcphost.AggregatedPrompt
	ConnectedResult  []string
}

var _ mcphost.HostAPI = (*Host)(nil)

// Calls returns a copy of every recorded method invocation, in order.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallCount returns how many times the named method was invoked.
func (h *Host) CallCount(method string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears recorded calls without altering response configuration.
func (h *Host) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

func (h *Host) record(method string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Method: method, Args: args})
}

func (h *Host) Start(_ context.Context) error {
	h.record("Start")
	return h.StartErr
}

func (h *Host) Stop(_ context.Context) error {
	h.record("Stop")
	return h.StopErr
}

func (h *Host) CallTool(_ context.Context, serverID string, params mcphost.CallToolParams, _ ...mcphost.CallOptions) (*mcphost.CallToolResult, error) {
	h.record("CallTool", serverID, params)
	if h.CallToolErr != nil {
		return nil, h.CallToolErr
	}
	if h.CallToolResult == nil {
		return &mcphost.CallToolResult{}, nil
	}
	cp := *h.CallToolResult
	return &cp, nil
}

func (h *Host) ReadResource(_ context.Context, serverID string, params mcphost.ReadResourceParams, _ ...mcphost.CallOptions) (*mcphost.ReadResourceResult, error) {
	h.record("ReadResource", serverID, params)
	if h.ReadResourceErr != nil {
		return nil, h.ReadResourceErr
	}
	if h.ReadResourceResult == nil {
		return &mcphost.ReadResourceResult{}, nil
	}
	cp := *h.ReadResourceResult
	return &cp, nil
}

func (h *Host) GetPrompt(_ context.Context, serverID string, params mcphost.GetPromptParams, _ ...mcphost.CallOptions) (*mcphost.GetPromptResult, error) {
	h.record("GetPrompt", serverID, params)
	if h.GetPromptErr != nil {
		return nil, h.GetPromptErr
	}
	if h.GetPromptResult == nil {
		return &mcphost.GetPromptResult{}, nil
	}
	cp := *h.GetPromptResult
	return &cp, nil
}

func (h *Host) SetRootsValidated(_ context.Context, roots []mcphost.Root) error {
	h.record("SetRootsValidated", roots)
	// Mirrors Host.SetRootsValidated: invalid input is rejected before any
	// roots are stored.
	if roots == nil {
		return mcphost.NewHostError(mcphost.KindInvalidTransport, "roots must be a non-null array")
	}
	for _, r := range roots {
		if r.URI == "" || r.Name == "" {
			return mcphost.NewHostError(mcphost.KindInvalidTransport, "roots entries need a non-empty uri and name")
		}
	}
	// Mirrors Host.SetRoots: the new roots are always persisted and visible
	// via CurrentRoots, even when SetRootsErr simulates a per-server
	// notify-failure *mcphost.AggregateError.
	h.Roots = roots
	if h.SetRootsErr != nil {
		return h.SetRootsErr
	}
	return nil
}

func (h *Host) CurrentRoots() []mcphost.Root {
	h.record("CurrentRoots")
	out := make([]mcphost.Root, len(h.Roots))
	copy(out, h.Roots)
	return out
}

func (h *Host) SubscribeResource(_ context.Context, serverID, uri string) error {
	h.record("SubscribeResource", serverID, uri)
	return h.SubscribeErr
}

func (h *Host) UnsubscribeResource(_ context.Context, serverID, uri string) error {
	h.record("UnsubscribeResource", serverID, uri)
	return h.UnsubscribeErr
}

func (h *Host) SuggestServerForResource(uri string) []mcphost.Suggestion {
	h.record("SuggestServerForResource", uri)
	return h.ResourceSuggestions
}

func (h *Host) SuggestServerForTool(name string) []mcphost.Suggestion {
	h.record("SuggestServerForTool", name)
	return h.ToolSuggestions
}

func (h *Host) SuggestServerForPrompt(name string) []mcphost.Suggestion {
	h.record("SuggestServerForPrompt", name)
	return h.PromptSuggestions
}

func (h *Host) Tools() []mcphost.AggregatedTool {
	h.record("Tools")
	return h.ToolsResult
}

func (h *Host) Resources() []mcphost.AggregatedResource {
	h.record("Resources")
	return h.ResourcesResult
}

func (h *Host) ResourceTemplates() []mcphost.AggregatedResourceTemplate {
	h.record("ResourceTemplates")
	return h.TemplatesResult
}

func (h *Host) Prompts() []mcphost.AggregatedPrompt {
	h.record("Prompts")
	return h.PromptsResult
}

func (h *Host) ConnectedServers() []string {
	h.record("ConnectedServers")
	return h.ConnectedResult
}
