// Package web provides an HTTP server that previews a sankey diagram file.
//
// The server exposes a small JSON API for the source text, the parsed
// records and their diagnostics, and pushes a "reload" event over
// Server-Sent Events whenever the file changes on disk. Writing the source
// through the API is disabled unless ReadOnly is turned off.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
// Only the file passed to New is ever read or written.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/robinvdvleuten/sankey/loader"
	"github.com/robinvdvleuten/sankey/telemetry"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	ReadOnly     bool
	WatchEnabled bool

	// Loader parses the file; nil means a default loader.
	Loader *loader.Loader

	mu     sync.RWMutex
	file   string
	result *loader.Result

	events *hub
}

func New(port int, file string) *Server {
	return NewWithVersion(port, file, "", "")
}

func NewWithVersion(port int, file, version, commitSHA string) *Server {
	return &Server{
		Port:      port,
		Host:      "127.0.0.1",
		Version:   version,
		CommitSHA: commitSHA,
		ReadOnly:  true,
		file:      file,
		events:    newHub(),
	}
}

// Start loads the file and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))
	defer timer.End()

	if s.file == "" {
		return fmt.Errorf("diagram file is required")
	}

	loadTimer := timer.Child(fmt.Sprintf("web.load %s", filepath.Base(s.file)))
	err := s.reload(ctx)
	loadTimer.End()
	if err != nil {
		return fmt.Errorf("failed to load diagram: %w", err)
	}

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/source", s.handleGetSource)
	mux.HandleFunc("PUT /api/source", s.requireWritable(s.handlePutSource))
	mux.HandleFunc("GET /api/diagram", s.handleGetDiagram)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	// Prod serves the embedded preview page, dev leaves / to the frontend server.
	s.mountAssets(mux)

	return mux
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			http.Error(w, "Server is in read-only mode", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// reload parses the file from disk and swaps in the new result.
// Caller must NOT hold the mutex.
func (s *Server) reload(ctx context.Context) error {
	ldr := s.Loader
	if ldr == nil {
		ldr = loader.New()
	}

	result, err := ldr.Load(ctx, s.file)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	return nil
}

// current returns the latest parse, or nil before the first load.
func (s *Server) current() *loader.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}
