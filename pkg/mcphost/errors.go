package mcphost

import (
	"errors"
	"fmt"
)

// Kind classifies a [HostError]. Protocol kinds mirror JSON-RPC/MCP error
// categories preserved verbatim from the originating server; host kinds are
// raised by the host engine itself.
type Kind string

const (
	// Protocol error kinds, preserved from the MCP/JSON-RPC layer.
	KindMethodNotFound Kind = "METHOD_NOT_FOUND"
	KindInvalidParams  Kind = "INVALID_PARAMS"
	KindInvalidRequest Kind = "INVALID_REQUEST"
	KindInternalError  Kind = "INTERNAL_ERROR"
	KindRequestTimeout Kind = "REQUEST_TIMEOUT"

	// Host error kinds, raised by the engine.
	KindRootsUpdateFailed  Kind = "ROOTS_UPDATE_FAILED"
	KindServerNotFound     Kind = "SERVER_NOT_FOUND"
	KindInvalidTransport   Kind = "INVALID_TRANSPORT"
	KindConnectionFailed   Kind = "CONNECTION_FAILED"
	KindSubscriptionFailed Kind = "SUBSCRIPTION_FAILED"
	KindToolCallFailed     Kind = "TOOL_CALL_FAILED"
	KindResourceReadFailed Kind = "RESOURCE_READ_FAILED"
	KindPromptGetFailed    Kind = "PROMPT_GET_FAILED"
)

// HostError is the structured error type returned by Host operations. It
// carries a [Kind] for programmatic dispatch, an optional ServerID for
// attribution, and an optional wrapped Cause.
type HostError struct {
	Kind     Kind
	Message  string
	ServerID string
	Cause    error
}

// NewHostError constructs a [HostError] with the given kind and message.
func NewHostError(kind Kind, message string) *HostError {
	return &HostError{Kind: kind, Message: message}
}

// WithServer returns a copy of e with ServerID set.
func (e *HostError) WithServer(serverID string) *HostError {
	cp := *e
	cp.ServerID = serverID
	return &cp
}

// WithCause returns a copy of e with Cause set.
func (e *HostError) WithCause(cause error) *HostError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Error implements error.
func (e *HostError) Error() string {
	if e.ServerID != "" {
		if e.Cause != nil {
			return fmt.Sprintf("mcphost: %s (server %q): %s: %v", e.Kind, e.ServerID, e.Message, e.Cause)
		}
		return fmt.Sprintf("mcphost: %s (server %q): %s", e.Kind, e.ServerID, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("mcphost: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("mcphost: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *HostError) Unwrap() error {
	return e.Cause
}

// Is reports equality by Kind, so callers can do
// errors.Is(err, &HostError{Kind: KindServerNotFound}).
func (e *HostError) Is(target error) bool {
	t, ok := target.(*HostError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// AggregateError carries one [HostError] per server for operations that can
// fail independently per connection (notably setRoots). A nil *AggregateError
// means no per-server failures occurred.
type AggregateError struct {
	Errors []*HostError
}

// Error implements error by joining the per-server messages.
func (a *AggregateError) Error() string {
	if len(a.Errors) == 0 {
		return "mcphost: aggregate error with no entries"
	}
	joined := make([]error, len(a.Errors))
	for i, e := range a.Errors {
		joined[i] = e
	}
	return errors.Join(joined...).Error()
}

// Unwrap supports errors.Is/As traversal into the individual entries.
func (a *AggregateError) Unwrap() []error {
	out := make([]error, len(a.Errors))
	for i, e := range a.Errors {
		out[i] = e
	}
	return out
}

// newAggregateError returns nil (as an *AggregateError, so the nil-ness is
// meaningful to callers) when errs is empty, otherwise wraps the collected
// per-server errors.
func newAggregateError(errs []*HostError) *AggregateError {
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
