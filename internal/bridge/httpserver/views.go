package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrWong99/mcphost/pkg/mcphost"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleStatus serves GET /status: a summary of connected servers and
// session count, for operators rather than MCP clients.
func (s *Server) handleStatus(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connectedServers": s.host.ConnectedServers(),
		"sessionCount":     s.sessions.Count(),
	})
}

func (s *Server) handleServers(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"servers": s.host.ConnectedServers()})
}

func (s *Server) handleCapabilitiesTools(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.host.Tools()})
}

func (s *Server) handleCapabilitiesResources(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"resources": s.host.Resources()})
}

func (s *Server) handleCapabilitiesTemplates(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"resourceTemplates": s.host.ResourceTemplates()})
}

func (s *Server) handleCapabilitiesPrompts(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prompts": s.host.Prompts()})
}

func (s *Server) handleSuggestResource(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.host.SuggestServerForResource(req.URL.Query().Get("uri"))})
}

func (s *Server) handleSuggestTool(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.host.SuggestServerForTool(req.URL.Query().Get("name"))})
}

func (s *Server) handleSuggestPrompt(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.host.SuggestServerForPrompt(req.URL.Query().Get("name"))})
}

// handleGetRoots serves GET /config/roots, the symmetric read view this
// module adds alongside the POST named in spec §6.
func (s *Server) handleGetRoots(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"roots": s.host.CurrentRoots()})
}

// handlePostRoots serves POST /config/roots: replaces the workspace roots,
// returning 400 on input-validation failure per spec §7. A returned
// *mcphost.AggregateError means the roots were accepted and are already
// visible via CurrentRoots — only some servers' roots-changed notifications
// failed — so that case is reported as 200 with the failures in the body,
// not as a validation error.
func (s *Server) handlePostRoots(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Roots []mcphost.Root `json:"roots"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"malformed body"}`, http.StatusBadRequest)
		return
	}
	err := s.host.SetRootsValidated(req.Context(), body.Roots)
	var aggErr *mcphost.AggregateError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"roots": s.host.CurrentRoots()})
	case errors.As(err, &aggErr):
		writeJSON(w, http.StatusOK, map[string]any{
			"roots":              s.host.CurrentRoots(),
			"notificationErrors": aggErr.Errors,
		})
	default:
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	}
}
