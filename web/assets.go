//go:build !dev

package web

import (
	_ "embed"
	"html/template"
	"net/http"
	"path/filepath"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	Title     string
	Version   string
	CommitSHA string
	ReadOnly  bool
}

// mountAssets serves the embedded preview page on /.
func (s *Server) mountAssets(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := indexTemplate.Execute(w, indexData{
		Title:     filepath.Base(s.file),
		Version:   s.Version,
		CommitSHA: s.CommitSHA,
		ReadOnly:  s.ReadOnly,
	})
	if err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
