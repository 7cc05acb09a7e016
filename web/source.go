package web

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/robinvdvleuten/sankey/errors"
	"github.com/robinvdvleuten/sankey/loader"
)

// maxSourceSize bounds PUT request bodies.
const maxSourceSize = 10 << 20

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type SourceResponse struct {
	Filepath    string             `json:"filepath"`
	Source      string             `json:"source"`
	Diagnostics []errors.ErrorJSON `json:"diagnostics"`
}

func newSourceResponse(result *loader.Result) *SourceResponse {
	return &SourceResponse{
		Filepath:    result.Filename,
		Source:      string(result.Source),
		Diagnostics: errors.NewJSONFormatter().FormatAllToSlice(result.Errors()),
	}
}

// handleGetSource handles GET requests to /api/source.
// Returns the source of the last parse together with its diagnostics.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	result := s.current()
	if result == nil {
		http.Error(w, "No diagram loaded", http.StatusServiceUnavailable)
		return
	}

	writeJSONResponse(w, newSourceResponse(result))
}

// handlePutSource handles PUT requests to /api/source.
// Writes the provided content to the file and returns its diagnostics.
// Content with diagnostics is still saved.
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Source string `json:"source"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSourceSize)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.file == "" {
		http.Error(w, "No diagram file configured", http.StatusBadRequest)
		return
	}

	if err := os.WriteFile(s.file, []byte(request.Source), 0600); err != nil {
		http.Error(w, "Failed to write file", http.StatusInternalServerError)
		return
	}

	if err := s.reload(r.Context()); err != nil {
		http.Error(w, "Failed to reload diagram", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, newSourceResponse(s.current()))
}
