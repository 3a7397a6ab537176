package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider": s.cfg.Provider,
		"model":    s.cfg.ModelID,
		"stats":    s.stats.Snapshot(),
	})
}

func (s *Server) handleTestAPI(w http.ResponseWriter, r *http.Request) {
	ok := s.prober.Probe(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"api_working": ok,
		"message":     "Provider connection test completed - check server logs for details",
	})
}
