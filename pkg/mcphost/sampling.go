package mcphost

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// SimplifiedSamplingResult is the return shape [Host.SetSamplingHandler]'s
// convenience adapter accepts, per spec §4.7.
type SimplifiedSamplingResult struct {
	Content    string
	Model      string
	StopReason string
	Usage      map[string]any
}

// Sink is an external channel capable of receiving a sampling request and,
// eventually, delivering a response or error back. The bridge's WebSocket
// connections implement Sink; SSE sessions do not register as sinks, and an
// in-process handler set via [Host.SetSamplingHandler] bypasses sinks.
type Sink interface {
	// DeliverSamplingRequest asks the sink to present the request to
	// whatever is on the other end (a human approving a WS prompt, an
	// in-process LLM call, ...). It must not block waiting for the answer;
	// the answer arrives later via [SamplingBroker.Resolve] /
	// [SamplingBroker.Reject].
	DeliverSamplingRequest(req SamplingRequest) error
}

// SamplingRequest is the payload handed to a [Sink].
type SamplingRequest struct {
	RequestID string
	ServerID  string
	Params    *mcpsdk.CreateMessageParams
}

// pendingSampling tracks one in-flight createMessage request awaiting
// completion from exactly one of {response, error, timeout, caller
// cancellation, host stop}. Unregistering the sink that received the
// request does not complete it.
type pendingSampling struct {
	once    sync.Once
	resultC chan samplingOutcome
}

type samplingOutcome struct {
	result *mcpsdk.CreateMessageResult
	err    error
}

// SamplingBroker relays server-initiated createMessage requests to whatever
// external sink is currently registered, enforcing a per-request deadline
// and exactly-once completion (spec §4.2, §8 "sampling exactly-once").
type SamplingBroker struct {
	timeout     time.Duration
	broadcaster *broadcaster

	mu       sync.Mutex
	sinks    []Sink // ranked: index 0 is tried first
	pending  map[string]*pendingSampling
	inProc   func(ctx context.Context, serverID string, params *mcpsdk.CreateMessageParams) (*SimplifiedSamplingResult, error)
}

func newSamplingBroker(timeout time.Duration, b *broadcaster) *SamplingBroker {
	return &SamplingBroker{
		timeout:     timeout,
		broadcaster: b,
		pending:     make(map[string]*pendingSampling),
	}
}

// RegisterSink adds a sink at the front of the ranking (most-recently
// registered wins first-fit), and removes it via the returned function.
// This models "any currently open WebSocket peer" / "any session with a
// writable SSE connection" as an ordered list rather than two hardcoded
// kinds, so the bridge can register WS peers and SSE sessions through the
// same mechanism and rely on registration order for the ranking.
func (b *SamplingBroker) RegisterSink(sink Sink) (unregister func()) {
	b.mu.Lock()
	b.sinks = append([]Sink{sink}, b.sinks...)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.sinks {
			if s == sink {
				b.sinks = append(b.sinks[:i], b.sinks[i+1:]...)
				return
			}
		}
	}
}

// SetInProcessHandler installs a simplified in-process handler, per
// [Host.SetSamplingHandler]. When set, it is preferred over any registered
// Sink (it never needs to cross a wire).
func (b *SamplingBroker) SetInProcessHandler(fn func(ctx context.Context, serverID string, params *mcpsdk.CreateMessageParams) (*SimplifiedSamplingResult, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inProc = fn
}

// handle is invoked by the Host's shared CreateMessage handler for every
// server advertising sampling. It blocks until completion, error, or
// timeout.
func (b *SamplingBroker) handle(ctx context.Context, serverID string, params *mcpsdk.CreateMessageParams) (*mcpsdk.CreateMessageResult, error) {
	b.mu.Lock()
	inProc := b.inProc
	b.mu.Unlock()

	if inProc != nil {
		simplified, err := inProc(ctx, serverID, params)
		if err != nil {
			return nil, &mcpsdk.JSONRPCError{Code: int(mcpJSONRPCInternalError), Message: err.Error()}
		}
		return simplifiedToResult(simplified), nil
	}

	requestID := uuid.NewString()
	pending := &pendingSampling{resultC: make(chan samplingOutcome, 1)}

	b.mu.Lock()
	sink := b.firstSink()
	if sink == nil {
		b.mu.Unlock()
		return nil, NewHostError(KindInternalError, "no active client to handle sampling request").WithServer(serverID)
	}
	b.pending[requestID] = pending
	b.mu.Unlock()

	b.broadcaster.emitSamplingRequest(SamplingRequestEvent{RequestID: requestID, ServerID: serverID, Params: paramsToMap(params)})

	if err := sink.DeliverSamplingRequest(SamplingRequest{RequestID: requestID, ServerID: serverID, Params: params}); err != nil {
		b.complete(requestID, nil, fmt.Errorf("mcphost: sink rejected sampling request delivery: %w", err))
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case out := <-pending.resultC:
		if out.err != nil {
			return nil, out.err
		}
		return out.result, nil
	case <-timer.C:
		b.complete(requestID, nil, NewHostError(KindRequestTimeout, "sampling request timed out").WithServer(serverID))
		out := <-pending.resultC
		return out.result, out.err
	case <-ctx.Done():
		b.complete(requestID, nil, ctx.Err())
		out := <-pending.resultC
		return out.result, out.err
	}
}

// firstSink returns the highest-ranked sink, or nil. Must be called with
// b.mu held.
func (b *SamplingBroker) firstSink() Sink {
	if len(b.sinks) == 0 {
		return nil
	}
	return b.sinks[0]
}

// Resolve delivers a successful sampling_response for requestID. Unknown
// request ids are discarded without logging.
func (b *SamplingBroker) Resolve(requestID string, result *mcpsdk.CreateMessageResult) {
	b.complete(requestID, result, nil)
}

// Reject delivers a sampling_error for requestID.
func (b *SamplingBroker) Reject(requestID string, err error) {
	b.complete(requestID, nil, err)
}

// ResolveSimplified delivers a successful sampling_response expressed in the
// simplified {content, model?, stopReason?, usage?} shape that sinks
// outside this package (the WS/SSE bridge) exchange over the wire, avoiding
// a direct dependency on the MCP SDK's CreateMessageResult type.
func (b *SamplingBroker) ResolveSimplified(requestID string, result *SimplifiedSamplingResult) {
	b.Resolve(requestID, simplifiedToResult(result))
}

// complete fires the pending callback for requestID exactly once; repeat
// calls (e.g. both a timeout and a late response racing) are no-ops beyond
// the first.
func (b *SamplingBroker) complete(requestID string, result *mcpsdk.CreateMessageResult, err error) {
	b.mu.Lock()
	pending, ok := b.pending[requestID]
	if ok {
		delete(b.pending, requestID)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	pending.once.Do(func() {
		pending.resultC <- samplingOutcome{result: result, err: err}
	})
}

// closeAll fires every still-pending sampling callback with an
// INTERNAL_ERROR describing host shutdown, satisfying the "sink
// disappeared" lifetime rule of spec §4.2 at the Host-wide scope.
func (b *SamplingBroker) closeAll() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.pending))
	for id := range b.pending {
		ids = append(ids, id)
	}
	b.mu.Unlock()
	for _, id := range ids {
		b.complete(id, nil, NewHostError(KindInternalError, "host stopped while sampling request was pending"))
	}
}

func simplifiedToResult(s *SimplifiedSamplingResult) *mcpsdk.CreateMessageResult {
	return &mcpsdk.CreateMessageResult{
		Content:    &mcpsdk.TextContent{Text: s.Content},
		Model:      s.Model,
		StopReason: s.StopReason,
	}
}

func paramsToMap(params *mcpsdk.CreateMessageParams) map[string]any {
	return map[string]any{
		"maxTokens": params.MaxTokens,
	}
}

// mcpJSONRPCInternalError is the standard JSON-RPC internal-error code,
// used when an in-process sampling handler fails and must be mapped into
// the MCP error shape expected by the originating server.
const mcpJSONRPCInternalError = -32603
