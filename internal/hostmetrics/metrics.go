package hostmetrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/MrWong99/mcphost"

// Metrics holds the instruments for the host engine and HTTP/SSE/WS bridge.
// Only JSONRPCRequests and HTTPRequestDuration are recorded (by the bridge);
// nothing in this module calls RecordConnect, RecordToolCall or
// RecordSampling, or records the remaining instruments. Construct once with
// [NewMetrics] after [InitProvider] has registered the global meter provider.
type Metrics struct {
	ConnectAttempts  metric.Int64Counter
	ConnectFailures  metric.Int64Counter
	ConnectLatency   metric.Float64Histogram
	ServerDisconnects metric.Int64Counter

	ToolCalls        metric.Int64Counter
	ToolCallLatency  metric.Float64Histogram
	ResourceReads    metric.Int64Counter
	ResourceReadLatency metric.Float64Histogram
	PromptGets       metric.Int64Counter
	PromptGetLatency metric.Float64Histogram

	SamplingRequests metric.Int64Counter
	SamplingOutcomes metric.Int64Counter
	SamplingLatency  metric.Float64Histogram

	ActiveSessions   metric.Int64UpDownCounter
	SSEBufferDepth   metric.Int64Histogram
	JSONRPCRequests  metric.Int64Counter

	HTTPRequestDuration metric.Float64Histogram
}

// NewMetrics creates and registers every instrument against the global
// meter provider.
func NewMetrics() (*Metrics, error) {
	m := otel.Meter(meterName)

	var errs []error
	reg := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	connectAttempts, err := m.Int64Counter("mcphost.connect.attempts", metric.WithDescription("MCP server connection attempts"))
	reg(err)
	connectFailures, err := m.Int64Counter("mcphost.connect.failures", metric.WithDescription("MCP server connection failures"))
	reg(err)
	connectLatency, err := m.Float64Histogram("mcphost.connect.latency_ms", metric.WithDescription("Time to complete a server connect + capability refresh, in ms"))
	reg(err)
	serverDisconnects, err := m.Int64Counter("mcphost.server.disconnects", metric.WithDescription("Unexpected server session closures"))
	reg(err)

	toolCalls, err := m.Int64Counter("mcphost.tool.calls", metric.WithDescription("Tool call invocations"))
	reg(err)
	toolCallLatency, err := m.Float64Histogram("mcphost.tool.call.latency_ms", metric.WithDescription("Tool call latency, in ms"))
	reg(err)
	resourceReads, err := m.Int64Counter("mcphost.resource.reads", metric.WithDescription("Resource read invocations"))
	reg(err)
	resourceReadLatency, err := m.Float64Histogram("mcphost.resource.read.latency_ms", metric.WithDescription("Resource read latency, in ms"))
	reg(err)
	promptGets, err := m.Int64Counter("mcphost.prompt.gets", metric.WithDescription("Prompt get invocations"))
	reg(err)
	promptGetLatency, err := m.Float64Histogram("mcphost.prompt.get.latency_ms", metric.WithDescription("Prompt get latency, in ms"))
	reg(err)

	samplingRequests, err := m.Int64Counter("mcphost.sampling.requests", metric.WithDescription("Sampling requests dispatched to a sink"))
	reg(err)
	samplingOutcomes, err := m.Int64Counter("mcphost.sampling.outcomes", metric.WithDescription("Sampling request outcomes, by outcome attribute"))
	reg(err)
	samplingLatency, err := m.Float64Histogram("mcphost.sampling.latency_ms", metric.WithDescription("Sampling request round-trip latency, in ms"))
	reg(err)

	activeSessions, err := m.Int64UpDownCounter("mcphost.bridge.active_sessions", metric.WithDescription("Currently live bridge sessions"))
	reg(err)
	sseBufferDepth, err := m.Int64Histogram("mcphost.bridge.sse_buffer_depth", metric.WithDescription("Per-session SSE replay buffer depth at flush time"))
	reg(err)
	jsonrpcRequests, err := m.Int64Counter("mcphost.bridge.jsonrpc_requests", metric.WithDescription("JSON-RPC requests handled, by method"))
	reg(err)

	httpRequestDuration, err := m.Float64Histogram("mcphost.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path"),
		metric.WithUnit("s"),
	)
	reg(err)

	if len(errs) > 0 {
		return nil, errs[0]
	}

	return &Metrics{
		ConnectAttempts:     connectAttempts,
		ConnectFailures:     connectFailures,
		ConnectLatency:      connectLatency,
		ServerDisconnects:   serverDisconnects,
		ToolCalls:           toolCalls,
		ToolCallLatency:     toolCallLatency,
		ResourceReads:       resourceReads,
		ResourceReadLatency: resourceReadLatency,
		PromptGets:          promptGets,
		PromptGetLatency:    promptGetLatency,
		SamplingRequests:    samplingRequests,
		SamplingOutcomes:    samplingOutcomes,
		SamplingLatency:     samplingLatency,
		ActiveSessions:      activeSessions,
		SSEBufferDepth:      sseBufferDepth,
		JSONRPCRequests:     jsonrpcRequests,
		HTTPRequestDuration: httpRequestDuration,
	}, nil
}

// RecordConnect records the outcome and latency of a server connect attempt.
func (m *Metrics) RecordConnect(ctx context.Context, serverID string, ok bool, latencyMs float64) {
	attrs := metric.WithAttributes(attribute.String("server_id", serverID))
	m.ConnectAttempts.Add(ctx, 1, attrs)
	if !ok {
		m.ConnectFailures.Add(ctx, 1, attrs)
	}
	m.ConnectLatency.Record(ctx, latencyMs, attrs)
}

// RecordToolCall records a tool call's outcome and latency.
func (m *Metrics) RecordToolCall(ctx context.Context, serverID, toolName string, isError bool, latencyMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("server_id", serverID),
		attribute.String("tool", toolName),
		attribute.Bool("error", isError),
	)
	m.ToolCalls.Add(ctx, 1, attrs)
	m.ToolCallLatency.Record(ctx, latencyMs, attrs)
}

// RecordSampling records a sampling request's terminal outcome.
func (m *Metrics) RecordSampling(ctx context.Context, serverID, outcome string, latencyMs float64) {
	attrs := metric.WithAttributes(attribute.String("server_id", serverID))
	m.SamplingRequests.Add(ctx, 1, attrs)
	m.SamplingOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("server_id", serverID), attribute.String("outcome", outcome)))
	m.SamplingLatency.Record(ctx, latencyMs, attrs)
}

// RecordJSONRPCRequest records a single dispatched JSON-RPC method call.
func (m *Metrics) RecordJSONRPCRequest(ctx context.Context, method string) {
	m.JSONRPCRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}
