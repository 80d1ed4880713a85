package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/crossfeed/internal/merge"
)

// handleHealth responds with a simple JSON status indicating the process is
// alive and whether each feed is currently connected.
// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hl := s.hl.Load()
	pdx := s.pdx.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"feeds": map[string]bool{
			string(hl.Exchange):  hl.Connected,
			string(pdx.Exchange): pdx.Connected,
		},
	})
}

// handleBooks returns the latest normalized book for each venue.
// GET /api/books
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	hl := s.hl.Load()
	pdx := s.pdx.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		string(hl.Exchange):  hl,
		string(pdx.Exchange): pdx,
	})
}

// handleMerged builds and returns the merged cross-venue book. The optional
// depth query parameter (1..MaxDepth) controls how many rows per side.
// GET /api/merged?depth=N
func (s *Server) handleMerged(w http.ResponseWriter, r *http.Request) {
	depth := s.maxDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.maxDepth {
			writeError(w, http.StatusBadRequest, "depth must be between 1 and "+strconv.Itoa(s.maxDepth))
			return
		}
		depth = n
	}

	hl := s.hl.Load()
	pdx := s.pdx.Load()
	writeJSON(w, http.StatusOK, merge.Build(&hl, &pdx, depth))
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
