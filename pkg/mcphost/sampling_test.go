package mcphost

import (
	"context"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// fakeSink records delivered requests and lets the test drive the response
// on a separate goroutine, mirroring how a real WS/SSE sink would answer
// asynchronously.
type fakeSink struct {
	delivered chan SamplingRequest
	failNext  bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{delivered: make(chan SamplingRequest, 1)}
}

func (s *fakeSink) DeliverSamplingRequest(req SamplingRequest) error {
	if s.failNext {
		return context.DeadlineExceeded
	}
	s.delivered <- req
	return nil
}

func TestSamplingBrokerResolve(t *testing.T) {
	b := newSamplingBroker(2*time.Second, &broadcaster{})
	sink := newFakeSink()
	unregister := b.RegisterSink(sink)
	defer unregister()

	go func() {
		req := <-sink.delivered
		b.Resolve(req.RequestID, &mcpsdk.CreateMessageResult{Content: &mcpsdk.TextContent{Text: "hi"}})
	}()

	result, err := b.handle(context.Background(), "srv-a", &mcpsdk.CreateMessageParams{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	tc, ok := result.Content.(*mcpsdk.TextContent)
	if !ok || tc.Text != "hi" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSamplingBrokerReject(t *testing.T) {
	b := newSamplingBroker(2*time.Second, &broadcaster{})
	sink := newFakeSink()
	b.RegisterSink(sink)

	go func() {
		req := <-sink.delivered
		b.Reject(req.RequestID, NewHostError(KindInternalError, "denied"))
	}()

	_, err := b.handle(context.Background(), "srv-a", &mcpsdk.CreateMessageParams{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSamplingBrokerNoSinkFailsImmediately(t *testing.T) {
	b := newSamplingBroker(2*time.Second, &broadcaster{})
	_, err := b.handle(context.Background(), "srv-a", &mcpsdk.CreateMessageParams{})
	var hostErr *HostError
	if err == nil {
		t.Fatal("expected error")
	}
	if he, ok := err.(*HostError); !ok || he.Kind != KindInternalError {
		t.Fatalf("expected INTERNAL_ERROR, got %v (%T)", err, err)
	}
	_ = hostErr
}

func TestSamplingBrokerTimeout(t *testing.T) {
	b := newSamplingBroker(20*time.Millisecond, &broadcaster{})
	sink := newFakeSink()
	b.RegisterSink(sink)

	// Drain the delivery but never answer it.
	go func() { <-sink.delivered }()

	_, err := b.handle(context.Background(), "srv-a", &mcpsdk.CreateMessageParams{})
	he, ok := err.(*HostError)
	if !ok || he.Kind != KindRequestTimeout {
		t.Fatalf("expected REQUEST_TIMEOUT, got %v", err)
	}
}

func TestSamplingBrokerExactlyOnceCompletion(t *testing.T) {
	b := newSamplingBroker(2*time.Second, &broadcaster{})
	sink := newFakeSink()
	b.RegisterSink(sink)

	done := make(chan struct{})
	go func() {
		req := <-sink.delivered
		b.Resolve(req.RequestID, &mcpsdk.CreateMessageResult{Content: &mcpsdk.TextContent{Text: "first"}})
		// A second completion for the same id must be a silent no-op.
		b.Resolve(req.RequestID, &mcpsdk.CreateMessageResult{Content: &mcpsdk.TextContent{Text: "second"}})
		close(done)
	}()

	result, err := b.handle(context.Background(), "srv-a", &mcpsdk.CreateMessageParams{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	<-done
	tc := result.Content.(*mcpsdk.TextContent)
	if tc.Text != "first" {
		t.Fatalf("expected first completion to win, got %q", tc.Text)
	}
}

func TestSamplingBrokerInProcessHandler(t *testing.T) {
	b := newSamplingBroker(2*time.Second, &broadcaster{})
	b.SetInProcessHandler(func(_ context.Context, serverID string, _ *mcpsdk.CreateMessageParams) (*SimplifiedSamplingResult, error) {
		return &SimplifiedSamplingResult{Content: "from " + serverID}, nil
	})

	result, err := b.handle(context.Background(), "srv-a", &mcpsdk.CreateMessageParams{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	tc := result.Content.(*mcpsdk.TextContent)
	if tc.Text != "from srv-a" {
		t.Fatalf("unexpected content: %q", tc.Text)
	}
}
