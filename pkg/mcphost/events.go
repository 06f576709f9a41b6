package mcphost

import "sync"

// ServerConnectedEvent is emitted as soon as a server's connection
// succeeds, before its initial capability listing starts.
type ServerConnectedEvent struct {
	ServerID string
}

// ServerDisconnectedEvent is emitted when a server's connection closes
// unexpectedly. [Host.Stop] does not emit it for the connections it closes.
type ServerDisconnectedEvent struct {
	ServerID string
	Err      error
}

// ServerErrorEvent is emitted for a per-server failure that does not by
// itself terminate the connection (e.g. a transport-level error callback).
type ServerErrorEvent struct {
	ServerID string
	Err      error
}

// CapabilitiesUpdatedEvent is emitted whenever the aggregated tool/resource/
// template/prompt catalogues may have changed.
type CapabilitiesUpdatedEvent struct{}

// ResourceUpdatedEvent is emitted when a subscribed resource changes on its
// owning server.
type ResourceUpdatedEvent struct {
	ServerID string
	URI      string
}

// SamplingRequestEvent is emitted when a server asks the host to perform an
// LLM generation on its behalf.
type SamplingRequestEvent struct {
	RequestID string
	ServerID  string
	Params    map[string]any
}

// LogEvent is emitted when a server sends a logging-message notification.
// Level is composed as "server-<lvl>" per spec §4.1.
type LogEvent struct {
	ServerID string
	Level    string
	Message  string
}

// broadcaster is a typed, one-method-per-event-kind fan-out, replacing the
// source's inheritance-based event emitter (see spec §9). Each Emit* call
// invokes every currently registered listener for that kind; listeners run
// synchronously on the emitting goroutine and must not block.
type broadcaster struct {
	mu sync.RWMutex

	onServerConnected     []func(ServerConnectedEvent)
	onServerDisconnected  []func(ServerDisconnectedEvent)
	onServerError         []func(ServerErrorEvent)
	onCapabilitiesUpdated []func(CapabilitiesUpdatedEvent)
	onResourceUpdated     []func(ResourceUpdatedEvent)
	onSamplingRequest     []func(SamplingRequestEvent)
	onLog                 []func(LogEvent)
}

func (b *broadcaster) OnServerConnected(fn func(ServerConnectedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onServerConnected = append(b.onServerConnected, fn)
}

func (b *broadcaster) OnServerDisconnected(fn func(ServerDisconnectedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onServerDisconnected = append(b.onServerDisconnected, fn)
}

func (b *broadcaster) OnServerError(fn func(ServerErrorEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onServerError = append(b.onServerError, fn)
}

func (b *broadcaster) OnCapabilitiesUpdated(fn func(CapabilitiesUpdatedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onCapabilitiesUpdated = append(b.onCapabilitiesUpdated, fn)
}

func (b *broadcaster) OnResourceUpdated(fn func(ResourceUpdatedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onResourceUpdated = append(b.onResourceUpdated, fn)
}

func (b *broadcaster) OnSamplingRequest(fn func(SamplingRequestEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSamplingRequest = append(b.onSamplingRequest, fn)
}

func (b *broadcaster) OnLog(fn func(LogEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLog = append(b.onLog, fn)
}

func (b *broadcaster) emitServerConnected(ev ServerConnectedEvent) {
	b.mu.RLock()
	listeners := append([]func(ServerConnectedEvent){}, b.onServerConnected...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (b *broadcaster) emitServerDisconnected(ev ServerDisconnectedEvent) {
	b.mu.RLock()
	listeners := append([]func(ServerDisconnectedEvent){}, b.onServerDisconnected...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (b *broadcaster) emitServerError(ev ServerErrorEvent) {
	b.mu.RLock()
	listeners := append([]func(ServerErrorEvent){}, b.onServerError...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (b *broadcaster) emitCapabilitiesUpdated() {
	b.mu.RLock()
	listeners := append([]func(CapabilitiesUpdatedEvent){}, b.onCapabilitiesUpdated...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(CapabilitiesUpdatedEvent{})
	}
}

func (b *broadcaster) emitResourceUpdated(ev ResourceUpdatedEvent) {
	b.mu.RLock()
	listeners := append([]func(ResourceUpdatedEvent){}, b.onResourceUpdated...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (b *broadcaster) emitSamplingRequest(ev SamplingRequestEvent) {
	b.mu.RLock()
	listeners := append([]func(SamplingRequestEvent){}, b.onSamplingRequest...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

func (b *broadcaster) emitLog(ev LogEvent) {
	b.mu.RLock()
	listeners := append([]func(LogEvent){}, b.onLog...)
	b.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
