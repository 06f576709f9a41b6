package mcphost

import (
	"errors"
	"testing"
)

func TestHostErrorIsComparesByKind(t *testing.T) {
	a := NewHostError(KindServerNotFound, "server x gone").WithServer("x")
	b := &HostError{Kind: KindServerNotFound}
	if !errors.Is(a, b) {
		t.Fatalf("expected errors.Is to match by kind")
	}
	c := &HostError{Kind: KindInvalidTransport}
	if errors.Is(a, c) {
		t.Fatalf("expected errors.Is to not match a different kind")
	}
}

func TestHostErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewHostError(KindToolCallFailed, "call failed").WithCause(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Unwrap to expose the cause")
	}
}

func TestAggregateErrorNilWhenEmpty(t *testing.T) {
	if agg := newAggregateError(nil); agg != nil {
		t.Fatalf("expected nil aggregate for no errors, got %+v", agg)
	}
}

func TestAggregateErrorJoinsMessages(t *testing.T) {
	agg := newAggregateError([]*HostError{
		NewHostError(KindRootsUpdateFailed, "fail a").WithServer("A"),
		NewHostError(KindRootsUpdateFailed, "fail b").WithServer("B"),
	})
	if agg == nil {
		t.Fatal("expected non-nil aggregate")
	}
	if len(agg.Errors) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(agg.Errors))
	}
	msg := agg.Error()
	if msg == "" {
		t.Fatal("expected non-empty joined message")
	}
}
