package web

import (
	"net/http"

	"github.com/robinvdvleuten/sankey/loader"
)

// handleGetDiagram handles GET requests to /api/diagram.
// Returns the parsed records, node names and diagnostics. The query
// parameter format=msgpack switches the encoding.
func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	result := s.current()
	if result == nil {
		http.Error(w, "No diagram loaded", http.StatusServiceUnavailable)
		return
	}

	doc := result.Document()

	if r.URL.Query().Get("format") == loader.FormatMsgpack {
		w.Header().Set("Content-Type", "application/msgpack")
		if err := doc.Encode(w, loader.FormatMsgpack); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, doc)
}
