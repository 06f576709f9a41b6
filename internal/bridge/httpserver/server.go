// Package httpserver wires the JSON-RPC/SSE/WS bridge and the legacy
// read-only views onto a chi router, per spec §6's HTTP surface table.
package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MrWong99/mcphost/internal/bridge/rpc"
	"github.com/MrWong99/mcphost/internal/bridge/session"
	"github.com/MrWong99/mcphost/internal/bridge/sse"
	"github.com/MrWong99/mcphost/internal/health"
	"github.com/MrWong99/mcphost/internal/hostmetrics"
	"github.com/MrWong99/mcphost/pkg/mcphost"
)

// Config configures the routes and middleware a Server wires. Endpoint
// defaults to "/mcp" when empty.
type Config struct {
	Endpoint string
	APIKeys  []string
	AuthOn   bool
}

// Server owns the chi router serving the full bridge HTTP surface.
type Server struct {
	host     mcphost.HostAPI
	sessions *session.Manager
	router   *rpc.Router
	ws       *sse.WSHandler
	broker   *mcphost.SamplingBroker
	metrics  *hostmetrics.Metrics
	health   *health.Handler
	cfg      Config

	mux *chi.Mux
}

// New builds a Server. metrics may be nil (metrics calls become no-ops).
func New(host mcphost.HostAPI, sessions *session.Manager, router *rpc.Router, ws *sse.WSHandler, broker *mcphost.SamplingBroker, metrics *hostmetrics.Metrics, healthHandler *health.Handler, cfg Config) *Server {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "/mcp"
	}
	s := &Server{
		host:     host,
		sessions: sessions,
		router:   router,
		ws:       ws,
		broker:   broker,
		metrics:  metrics,
		health:   healthHandler,
		cfg:      cfg,
	}
	s.mux = s.buildRouter()
	return s
}

// Handler returns the fully wired http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hostmetrics.Middleware(s.metrics))
	r.Use(chimw.Recoverer)

	if s.health != nil {
		r.Get("/healthz", s.health.Healthz)
		r.Get("/readyz", s.health.Readyz)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route(s.cfg.Endpoint, func(r chi.Router) {
			r.Post("/", s.handleMCPPost)
			r.Get("/", s.handleMCPGet)
			r.Delete("/", s.handleMCPDelete)
			r.Post("/sampling_response", s.handleSamplingResponse)
			r.Post("/sampling_error", s.handleSamplingError)
		})

		r.Get("/ws", s.handleWS)

		r.Get("/status", s.handleStatus)
		r.Get("/servers", s.handleServers)
		r.Get("/capabilities/tools", s.handleCapabilitiesTools)
		r.Get("/capabilities/resources", s.handleCapabilitiesResources)
		r.Get("/capabilities/templates", s.handleCapabilitiesTemplates)
		r.Get("/capabilities/prompts", s.handleCapabilitiesPrompts)
		r.Get("/suggest/resource", s.handleSuggestResource)
		r.Get("/suggest/tool", s.handleSuggestTool)
		r.Get("/suggest/prompt", s.handleSuggestPrompt)
		r.Get("/config/roots", s.handleGetRoots)
		r.Post("/config/roots", s.handlePostRoots)
	})

	return r
}
