//go:build dev

package web

import "net/http"

// mountAssets does nothing in dev mode; the preview page is served by the
// frontend dev server, which proxies /api/* to Go.
func (s *Server) mountAssets(mux *http.ServeMux) {
}
