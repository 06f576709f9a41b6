package mcphost

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSamplingTimeout = 300 * time.Second
	eventBufferPerServer   = 100

	maxReconnectAttempts = 5
	reconnectBaseDelay   = 500 * time.Millisecond
	reconnectMaxDelay    = 30 * time.Second
)

// Host owns the full set of live connections to MCP servers, drives their
// lifecycle, maintains aggregated capability state, routes invocations, and
// emits host events. It implements the Host Core and Public Host API layers
// of the design as a single engine struct, per the composition-over-
// inheritance resolution in spec §9: HostCore and the public API are not
// separate types; callers that need only the public surface use the
// narrower [HostAPI] interface (see contract.go).
//
// The zero value is not usable; construct with [New].
type Host struct {
	broadcaster

	cfg    HostConfig
	client *mcpsdk.Client

	mu       sync.RWMutex
	servers  map[string]*serverConn // serverID -> live connection; absent means not connected
	sessions map[*mcpsdk.ClientSession]string // reverse lookup: session -> serverID, for shared-client handlers

	tools     map[string][]AggregatedTool
	resources map[string][]AggregatedResource
	templates map[string][]AggregatedResourceTemplate
	prompts   map[string][]AggregatedPrompt

	roots []Root

	started bool
	stopped bool

	sampling *SamplingBroker

	// stopReconnect, when closed, tells in-flight reconnect loops to give up.
	stopReconnect chan struct{}
}

// New constructs a Host from cfg. It does not connect to any server; call
// [Host.Start] to begin connecting.
func New(cfg HostConfig) *Host {
	if cfg.SamplingTimeout <= 0 {
		cfg.SamplingTimeout = defaultSamplingTimeout
	}

	h := &Host{
		cfg:           cfg,
		servers:       make(map[string]*serverConn),
		sessions:      make(map[*mcpsdk.ClientSession]string),
		tools:         make(map[string][]AggregatedTool),
		resources:     make(map[string][]AggregatedResource),
		templates:     make(map[string][]AggregatedResourceTemplate),
		prompts:       make(map[string][]AggregatedPrompt),
		stopReconnect: make(chan struct{}),
	}
	h.sampling = newSamplingBroker(cfg.SamplingTimeout, &h.broadcaster)

	opts := &mcpsdk.ClientOptions{}
	if cfg.HostCapabilities.Sampling != nil {
		opts.CreateMessageHandler = h.handleCreateMessage
	}
	opts.ToolListChangedHandler = h.handleToolListChanged
	opts.ResourceListChangedHandler = h.handleResourceListChanged
	opts.PromptListChangedHandler = h.handlePromptListChanged
	opts.ResourceUpdatedHandler = h.handleResourceUpdated
	opts.LoggingMessageHandler = h.handleLoggingMessage

	impl := &mcpsdk.Implementation{Name: cfg.HostInfo.Name, Version: cfg.HostInfo.Version}
	h.client = mcpsdk.NewClient(impl, opts)
	return h
}

// Start connects to every configured server in parallel, idempotently.
// It returns once every attempt has either succeeded or failed terminally;
// per-server failures are emitted as serverError/serverDisconnected rather
// than returned, so Start never fails even if every server fails. It emits
// one capabilitiesUpdated event at the end, after the ones each connected
// server's capability refresh emits.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return nil
	}
	h.started = true
	servers := make([]ServerConfig, 0, len(h.cfg.Servers))
	seen := make(map[string]bool, len(h.cfg.Servers))
	for _, s := range h.cfg.Servers {
		if s.ID == "" {
			slog.Warn("mcphost: skipping server config with empty id")
			continue
		}
		if seen[s.ID] {
			slog.Warn("mcphost: duplicate server id in configuration; retaining only the first", "server", s.ID)
			continue
		}
		seen[s.ID] = true
		servers = append(servers, s)
	}
	h.mu.Unlock()

	var g errgroup.Group
	for _, cfg := range servers {
		cfg := cfg
		g.Go(func() error {
			if err := h.connectServer(ctx, cfg); err != nil {
				slog.Warn("mcphost: server connect failed", "server", cfg.ID, "err", err)
				h.emitServerError(ServerErrorEvent{ServerID: cfg.ID, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	h.emitCapabilitiesUpdated()
	return nil
}

// Stop closes every live client, clears all aggregated state, and emits a
// final capabilitiesUpdated event. It is idempotent; per-client close
// errors are logged but never abort teardown.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.stopped = true
	close(h.stopReconnect)

	conns := make([]*serverConn, 0, len(h.servers))
	for _, c := range h.servers {
		conns = append(conns, c)
	}
	h.servers = make(map[string]*serverConn)
	h.sessions = make(map[*mcpsdk.ClientSession]string)
	h.tools = make(map[string][]AggregatedTool)
	h.resources = make(map[string][]AggregatedResource)
	h.templates = make(map[string][]AggregatedResourceTemplate)
	h.prompts = make(map[string][]AggregatedPrompt)
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.session.Close(); err != nil {
			slog.Warn("mcphost: error closing server session", "server", c.cfg.ID, "err", err)
		}
	}
	h.sampling.closeAll()
	h.emitCapabilitiesUpdated()
	return nil
}

// connectServer implements the per-server connect algorithm of spec §4.1.
func (h *Host) connectServer(ctx context.Context, cfg ServerConfig) error {
	transport, err := buildTransport(ctx, cfg)
	if err != nil {
		return err
	}

	session, err := h.client.Connect(ctx, transport, nil)
	if err != nil {
		return NewHostError(KindConnectionFailed, "failed to connect").WithServer(cfg.ID).WithCause(err)
	}

	conn := &serverConn{cfg: cfg, session: session}

	h.mu.Lock()
	if old, exists := h.servers[cfg.ID]; exists {
		go func() { _ = old.session.Close() }()
	}
	h.servers[cfg.ID] = conn
	h.sessions[session] = cfg.ID
	h.mu.Unlock()

	go h.watchSessionClose(conn)

	h.emitServerConnected(ServerConnectedEvent{ServerID: cfg.ID})
	h.refreshCapabilities(ctx, cfg.ID)

	h.mu.RLock()
	roots := append([]Root{}, h.roots...)
	caps := conn.caps
	h.mu.RUnlock()

	if len(roots) > 0 && caps.Roots != nil && caps.Roots.ListChanged {
		if err := h.notifyRootsChanged(ctx, session); err != nil {
			slog.Warn("mcphost: failed to notify server of current roots on connect", "server", cfg.ID, "err", err)
		}
	}

	return nil
}

// refreshCapabilities re-derives the aggregated entries for one server,
// removing its previous entries first. Per-list failures are logged but do
// not abort the others; a single capabilitiesUpdated event fires once all
// lists have settled.
func (h *Host) refreshCapabilities(ctx context.Context, serverID string) {
	h.mu.RLock()
	conn, ok := h.servers[serverID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	sdkCaps := conn.session.InitializeResult().Capabilities
	caps := convertCapabilities(sdkCaps)

	var g errgroup.Group
	var tools []AggregatedTool
	var resources []AggregatedResource
	var templates []AggregatedResourceTemplate
	var prompts []AggregatedPrompt

	if caps.Tools != nil {
		g.Go(func() error {
			ts, err := listTools(ctx, conn.session, serverID)
			if err != nil {
				slog.Warn("mcphost: listTools failed", "server", serverID, "err", err)
				return nil
			}
			tools = ts
			return nil
		})
	}
	if caps.Resources != nil {
		g.Go(func() error {
			rs, err := listResources(ctx, conn.session, serverID)
			if err != nil {
				slog.Warn("mcphost: listResources failed", "server", serverID, "err", err)
				return nil
			}
			resources = rs
			return nil
		})
		if caps.Resources.Templates {
			g.Go(func() error {
				ts, err := listResourceTemplates(ctx, conn.session, serverID)
				if err != nil {
					slog.Warn("mcphost: listResourceTemplates failed", "server", serverID, "err", err)
					return nil
				}
				templates = ts
				return nil
			})
		}
	}
	if caps.Prompts != nil {
		g.Go(func() error {
			ps, err := listPrompts(ctx, conn.session, serverID)
			if err != nil {
				slog.Warn("mcphost: listPrompts failed", "server", serverID, "err", err)
				return nil
			}
			prompts = ps
			return nil
		})
	}
	_ = g.Wait()

	h.mu.Lock()
	if c, ok := h.servers[serverID]; ok {
		c.caps = caps
	}
	h.tools[serverID] = tools
	h.resources[serverID] = resources
	h.templates[serverID] = templates
	h.prompts[serverID] = prompts
	h.mu.Unlock()

	h.emitCapabilitiesUpdated()
}

// removeAggregated drops every aggregated entry owned by serverID. Must be
// called with h.mu held.
func (h *Host) removeAggregated(serverID string) {
	delete(h.tools, serverID)
	delete(h.resources, serverID)
	delete(h.templates, serverID)
	delete(h.prompts, serverID)
}

// handleSessionClosed is invoked by watchSessionClose when a server
// connection ends unexpectedly. It removes the server's state,
// emits serverDisconnected then capabilitiesUpdated (preserving the
// ordering guarantee of spec §5), and — unless the Host itself is
// stopping — starts a bounded reconnect-with-backoff attempt for stdio and
// streamable-http servers (the supplemented feature of SPEC_FULL.md §3.3).
func (h *Host) handleSessionClosed(serverID string, closeErr error) {
	h.mu.Lock()
	conn, ok := h.servers[serverID]
	if ok {
		delete(h.servers, serverID)
		delete(h.sessions, conn.session)
		h.removeAggregated(serverID)
	}
	stopping := h.stopped
	h.mu.Unlock()
	if !ok {
		return
	}

	h.emitServerDisconnected(ServerDisconnectedEvent{ServerID: serverID, Err: closeErr})
	h.emitCapabilitiesUpdated()

	if stopping {
		return
	}
	switch conn.cfg.Transport {
	case TransportStdio, TransportStreamableHTTP:
		go h.reconnectWithBackoff(conn.cfg)
	}
}

// watchSessionClose blocks until conn's session ends, then runs the
// disconnect path. This is the onClose wiring of spec §4.1 step 3: the SDK
// models connection-loss as the blocking call returning rather than an
// explicit callback, so the Host supplies its own callback semantics here.
func (h *Host) watchSessionClose(conn *serverConn) {
	err := conn.session.Wait()

	h.mu.RLock()
	current, stillCurrent := h.servers[conn.cfg.ID]
	h.mu.RUnlock()
	if !stillCurrent || current != conn {
		// Superseded by a newer connection (reconnect), or removed by
		// Stop; nothing to do.
		return
	}
	h.handleSessionClosed(conn.cfg.ID, err)
}

// reconnectWithBackoff retries connectServer with bounded exponential
// backoff. Independent MCP servers don't share a failure budget the way a
// single downstream dependency does, so this tracks per-server state
// directly rather than routing through a shared circuit breaker. Gives up
// silently (leaving the server absent from the aggregate) after
// maxReconnectAttempts, logging a warning.
func (h *Host) reconnectWithBackoff(cfg ServerConfig) {
	delay := reconnectBaseDelay
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-h.stopReconnect:
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := h.connectServer(ctx, cfg)
		cancel()
		if err == nil {
			slog.Info("mcphost: reconnected to server", "server", cfg.ID, "attempt", attempt)
			return
		}
		slog.Warn("mcphost: reconnect attempt failed", "server", cfg.ID, "attempt", attempt, "err", err)

		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
	slog.Warn("mcphost: giving up on reconnect after max attempts", "server", cfg.ID, "attempts", maxReconnectAttempts)
}

// CallTool delegates a tool invocation to serverID, failing with
// SERVER_NOT_FOUND if the server is unknown or not currently connected.
func (h *Host) CallTool(ctx context.Context, serverID string, params CallToolParams, opts ...CallOptions) (*CallToolResult, error) {
	conn, err := h.liveServer(serverID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withCallOptions(ctx, h.cfg.CallTimeout, opts...)
	defer cancel()

	result, callErr := conn.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      params.Name,
		Arguments: params.Arguments,
	})
	if callErr != nil {
		return nil, NewHostError(KindToolCallFailed, "tool call failed").WithServer(serverID).WithCause(callErr)
	}
	return &CallToolResult{Content: textContent(result.Content), IsError: result.IsError}, nil
}

// ReadResource delegates a resource read to serverID.
func (h *Host) ReadResource(ctx context.Context, serverID string, params ReadResourceParams, opts ...CallOptions) (*ReadResourceResult, error) {
	conn, err := h.liveServer(serverID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withCallOptions(ctx, h.cfg.CallTimeout, opts...)
	defer cancel()

	result, readErr := conn.session.ReadResource(ctx, &mcpsdk.ReadResourceParams{URI: params.URI})
	if readErr != nil {
		return nil, NewHostError(KindResourceReadFailed, "resource read failed").WithServer(serverID).WithCause(readErr)
	}
	out := &ReadResourceResult{URI: params.URI}
	for _, c := range result.Contents {
		out.MimeType = c.MIMEType
		out.Text = c.Text
		out.Blob = c.Blob
		break
	}
	return out, nil
}

// GetPrompt delegates a prompt resolution to serverID.
func (h *Host) GetPrompt(ctx context.Context, serverID string, params GetPromptParams, opts ...CallOptions) (*GetPromptResult, error) {
	conn, err := h.liveServer(serverID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withCallOptions(ctx, h.cfg.CallTimeout, opts...)
	defer cancel()

	result, getErr := conn.session.GetPrompt(ctx, &mcpsdk.GetPromptParams{Name: params.Name, Arguments: params.Arguments})
	if getErr != nil {
		return nil, NewHostError(KindPromptGetFailed, "prompt get failed").WithServer(serverID).WithCause(getErr)
	}
	out := &GetPromptResult{Description: result.Description}
	for _, m := range result.Messages {
		content := ""
		if tc, ok := m.Content.(*mcpsdk.TextContent); ok {
			content = tc.Text
		}
		out.Messages = append(out.Messages, PromptMessage{Role: string(m.Role), Content: content})
	}
	return out, nil
}

// SetRoots atomically replaces the current root list and, for every live
// client whose capabilities strictly declare roots.listChanged, sends a
// roots-changed notification. Per-server notification failures are
// collected and returned as an [AggregateError]; the new list is visible
// to all readers regardless of notification outcome (spec §3 invariant).
func (h *Host) SetRoots(ctx context.Context, roots []Root) error {
	h.mu.Lock()
	h.roots = append([]Root{}, roots...)
	conns := make([]*serverConn, 0, len(h.servers))
	for _, c := range h.servers {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	var mu sync.Mutex
	var errs []*HostError
	var g errgroup.Group
	for _, c := range conns {
		c := c
		if c.caps.Roots == nil || !c.caps.Roots.ListChanged {
			continue
		}
		g.Go(func() error {
			if err := h.notifyRootsChanged(ctx, c.session); err != nil {
				mu.Lock()
				errs = append(errs, NewHostError(KindRootsUpdateFailed, "roots notification failed").WithServer(c.cfg.ID).WithCause(err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if agg := newAggregateError(errs); agg != nil {
		return agg
	}
	return nil
}

func (h *Host) notifyRootsChanged(ctx context.Context, session *mcpsdk.ClientSession) error {
	return session.RootsListChanged(ctx)
}

// CurrentRoots returns a copy of the current root list.
func (h *Host) CurrentRoots() []Root {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Root{}, h.roots...)
}

// SubscribeResource delegates to the server's subscribeResource operation,
// translating transport errors into SUBSCRIPTION_FAILED.
func (h *Host) SubscribeResource(ctx context.Context, serverID, uri string) error {
	conn, err := h.liveServer(serverID)
	if err != nil {
		return err
	}
	if err := conn.session.Subscribe(ctx, &mcpsdk.SubscribeParams{URI: uri}); err != nil {
		return NewHostError(KindSubscriptionFailed, "subscribe failed").WithServer(serverID).WithCause(err)
	}
	return nil
}

// UnsubscribeResource delegates to the server's unsubscribeResource
// operation.
func (h *Host) UnsubscribeResource(ctx context.Context, serverID, uri string) error {
	conn, err := h.liveServer(serverID)
	if err != nil {
		return err
	}
	if err := conn.session.Unsubscribe(ctx, &mcpsdk.UnsubscribeParams{URI: uri}); err != nil {
		return NewHostError(KindSubscriptionFailed, "unsubscribe failed").WithServer(serverID).WithCause(err)
	}
	return nil
}

// SuggestServerForResource delegates to the Resolver against the current
// aggregated snapshot.
func (h *Host) SuggestServerForResource(uri string) []Suggestion {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return resolveResourceServer(uri, h.flatResourcesLocked(), h.flatTemplatesLocked())
}

// SuggestServerForTool delegates to the Resolver for an exact tool name.
func (h *Host) SuggestServerForTool(name string) []Suggestion {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return resolveToolServer(name, h.flatToolsLocked())
}

// SuggestServerForPrompt delegates to the Resolver for an exact prompt name.
func (h *Host) SuggestServerForPrompt(name string) []Suggestion {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return resolvePromptServer(name, h.flatPromptsLocked())
}

// Tools returns a snapshot of every aggregated tool across all connected
// servers.
func (h *Host) Tools() []AggregatedTool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.flatToolsLocked()
}

// Resources returns a snapshot of every aggregated resource.
func (h *Host) Resources() []AggregatedResource {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.flatResourcesLocked()
}

// ResourceTemplates returns a snapshot of every aggregated resource
// template.
func (h *Host) ResourceTemplates() []AggregatedResourceTemplate {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.flatTemplatesLocked()
}

// Prompts returns a snapshot of every aggregated prompt.
func (h *Host) Prompts() []AggregatedPrompt {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.flatPromptsLocked()
}

// ConnectedServers returns the ids of every currently connected server.
func (h *Host) ConnectedServers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.servers))
	for id := range h.servers {
		out = append(out, id)
	}
	return out
}

func (h *Host) flatToolsLocked() []AggregatedTool {
	var out []AggregatedTool
	for _, ts := range h.tools {
		out = append(out, ts...)
	}
	return out
}

func (h *Host) flatResourcesLocked() []AggregatedResource {
	var out []AggregatedResource
	for _, rs := range h.resources {
		out = append(out, rs...)
	}
	return out
}

func (h *Host) flatTemplatesLocked() []AggregatedResourceTemplate {
	var out []AggregatedResourceTemplate
	for _, ts := range h.templates {
		out = append(out, ts...)
	}
	return out
}

func (h *Host) flatPromptsLocked() []AggregatedPrompt {
	var out []AggregatedPrompt
	for _, ps := range h.prompts {
		out = append(out, ps...)
	}
	return out
}

// liveServer looks up a connected server's session, failing with
// SERVER_NOT_FOUND if it is unknown or not currently connected.
func (h *Host) liveServer(serverID string) (*serverConn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.servers[serverID]
	if !ok {
		return nil, NewHostError(KindServerNotFound, "server not connected").WithServer(serverID)
	}
	return conn, nil
}

// withCallOptions derives a context bounded by the first supplied
// CallOptions' Timeout, falling back to def when that is zero; with neither
// set the context has no deadline.
func withCallOptions(ctx context.Context, def time.Duration, opts ...CallOptions) (context.Context, context.CancelFunc) {
	timeout := def
	if len(opts) > 0 && opts[0].Timeout > 0 {
		timeout = opts[0].Timeout
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// ──────────────────────────────────────────────────────────────────────────
// Shared-client handlers. The Host registers one instance of each handler on
// the single underlying mcpsdk.Client (all server sessions share it, per the
// teacher's "single Client, many sessions" idiom); each handler recovers the
// originating server id via the session reverse-lookup before dispatching.
// ──────────────────────────────────────────────────────────────────────────

func (h *Host) serverIDForSession(session *mcpsdk.ClientSession) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.sessions[session]
	return id, ok
}

func (h *Host) handleCreateMessage(ctx context.Context, session *mcpsdk.ClientSession, params *mcpsdk.CreateMessageParams) (*mcpsdk.CreateMessageResult, error) {
	serverID, _ := h.serverIDForSession(session)
	return h.sampling.handle(ctx, serverID, params)
}

func (h *Host) handleToolListChanged(ctx context.Context, session *mcpsdk.ClientSession, _ *mcpsdk.ToolListChangedParams) {
	if serverID, ok := h.serverIDForSession(session); ok {
		h.refreshCapabilities(ctx, serverID)
	}
}

func (h *Host) handleResourceListChanged(ctx context.Context, session *mcpsdk.ClientSession, _ *mcpsdk.ResourceListChangedParams) {
	if serverID, ok := h.serverIDForSession(session); ok {
		h.refreshCapabilities(ctx, serverID)
	}
}

func (h *Host) handlePromptListChanged(ctx context.Context, session *mcpsdk.ClientSession, _ *mcpsdk.PromptListChangedParams) {
	if serverID, ok := h.serverIDForSession(session); ok {
		h.refreshCapabilities(ctx, serverID)
	}
}

func (h *Host) handleResourceUpdated(_ context.Context, session *mcpsdk.ClientSession, params *mcpsdk.ResourceUpdatedNotificationParams) {
	if serverID, ok := h.serverIDForSession(session); ok {
		h.emitResourceUpdated(ResourceUpdatedEvent{ServerID: serverID, URI: params.URI})
	}
}

func (h *Host) handleLoggingMessage(_ context.Context, session *mcpsdk.ClientSession, params *mcpsdk.LoggingMessageParams) {
	serverID, _ := h.serverIDForSession(session)
	h.emitLog(LogEvent{
		ServerID: serverID,
		Level:    fmt.Sprintf("server-%s", params.Level),
		Message:  fmt.Sprintf("%v", params.Data),
	})
}

// listTools drains the session's tool iterator into AggregatedTool values.
func listTools(ctx context.Context, session *mcpsdk.ClientSession, serverID string) ([]AggregatedTool, error) {
	var out []AggregatedTool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, err
		}
		out = append(out, AggregatedTool{
			ServerID:    serverID,
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schemaToMap(tool.InputSchema),
			Annotations: annotationsToMap(tool.Annotations),
		})
	}
	return out, nil
}

// listResources drains the session's resource iterator.
func listResources(ctx context.Context, session *mcpsdk.ClientSession, serverID string) ([]AggregatedResource, error) {
	var out []AggregatedResource
	for r, err := range session.Resources(ctx, nil) {
		if err != nil {
			return nil, err
		}
		out = append(out, AggregatedResource{
			ServerID: serverID,
			URI:      r.URI,
			Name:     r.Name,
			MimeType: r.MIMEType,
			Size:     r.Size,
		})
	}
	return out, nil
}

// listResourceTemplates drains the session's resource-template iterator.
func listResourceTemplates(ctx context.Context, session *mcpsdk.ClientSession, serverID string) ([]AggregatedResourceTemplate, error) {
	var out []AggregatedResourceTemplate
	for t, err := range session.ResourceTemplates(ctx, nil) {
		if err != nil {
			return nil, err
		}
		out = append(out, AggregatedResourceTemplate{
			ServerID:    serverID,
			ID:          t.Name,
			Name:        t.Name,
			URITemplate: t.URITemplate,
			Description: t.Description,
		})
	}
	return out, nil
}

// listPrompts drains the session's prompt iterator.
func listPrompts(ctx context.Context, session *mcpsdk.ClientSession, serverID string) ([]AggregatedPrompt, error) {
	var out []AggregatedPrompt
	for p, err := range session.Prompts(ctx, nil) {
		if err != nil {
			return nil, err
		}
		agg := AggregatedPrompt{ServerID: serverID, Name: p.Name, Description: p.Description}
		for _, a := range p.Arguments {
			agg.Arguments = append(agg.Arguments, PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required})
		}
		out = append(out, agg)
	}
	return out, nil
}

func annotationsToMap(a *mcpsdk.ToolAnnotations) map[string]any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"title":           a.Title,
		"readOnlyHint":    a.ReadOnlyHint,
		"destructiveHint": a.DestructiveHint,
		"idempotentHint":  a.IdempotentHint,
		"openWorldHint":   a.OpenWorldHint,
	}
}
