package httpserver

import (
	"net/http"
	"slices"
)

// authMiddleware enforces X-API-Key per spec §6 when s.cfg.AuthOn is set.
// The /ws route is passed through here and checked by handleWS instead,
// which also accepts the key as the api_key query parameter and rejects a
// bad key with HTTP 401 before the websocket upgrade.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !s.cfg.AuthOn {
			next.ServeHTTP(w, req)
			return
		}
		if req.URL.Path == "/ws" {
			next.ServeHTTP(w, req)
			return
		}
		key := req.Header.Get("X-API-Key")
		if !s.keyValid(key) {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (s *Server) keyValid(key string) bool {
	if key == "" {
		return false
	}
	return slices.Contains(s.cfg.APIKeys, key)
}
