// Package preview serves a finished cut over HTTP so the edit can be
// auditioned in any HLS-capable player.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopcut/gopcut/internal/batch"
	"github.com/gopcut/gopcut/internal/cutlist"
)

// Server serves a cut output directory: a generated VOD playlist, the part
// files themselves and a health endpoint.
type Server struct {
	dir        string
	port       int
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a preview server for a directory of cut parts.
func New(dir string, port int, logger *slog.Logger) (*Server, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open preview directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	return &Server{
		dir:    filepath.Clean(dir),
		port:   port,
		logger: logger,
	}, nil
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.handler(),
	}

	// Start server in a goroutine
	go func() {
		s.logger.Info("starting preview server", "port", s.port, "dir", s.dir)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	s.logger.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlist.m3u8", s.handlePlaylist)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/parts/", http.StripPrefix("/parts/", http.FileServer(http.Dir(s.dir))))
	return s.loggingMiddleware(mux)
}

// handlePlaylist serves a VOD playlist built from the parts currently on
// disk, so a preview during a long cut run picks up finished parts.
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	content, err := s.generate()
	if err != nil {
		s.logger.Error("failed to build playlist", "error", err)
		http.Error(w, "failed to build playlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// handleHealth serves health check information
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	parts, err := s.scanParts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var total float64
	for _, d := range s.durations(len(parts)) {
		total += d
	}

	health := map[string]interface{}{
		"status": "ok",
		"stats": map[string]interface{}{
			"directory":      s.dir,
			"parts":          len(parts),
			"total_duration": total,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

func (s *Server) generate() (string, error) {
	names, err := s.scanParts()
	if err != nil {
		return "", err
	}

	durations := s.durations(len(names))
	parts := make([]cutlist.Part, len(names))
	for i, name := range names {
		parts[i] = cutlist.Part{URI: "parts/" + name, Duration: durations[i]}
	}

	return cutlist.Playlist(parts)
}

// scanParts lists the part files in the directory, in name order.
func (s *Server) scanParts() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preview directory: %w", err)
	}

	var parts []string
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), "_part_") {
			continue
		}
		parts = append(parts, e.Name())
	}
	return parts, nil
}

// durations pairs the first n cut list segments with the parts. Parts
// without a matching segment get a zero duration.
func (s *Server) durations(n int) []float64 {
	out := make([]float64, n)

	path := s.findCutlist()
	if path == "" {
		s.logger.Warn("no cut list found, part durations unknown", "dir", s.dir)
		return out
	}

	cl, err := cutlist.ParseFile(path)
	if err != nil {
		s.logger.Warn("failed to parse cut list", "path", path, "error", err)
		return out
	}

	for i := 0; i < n && i < len(cl.Segments); i++ {
		out[i] = cl.Segments[i].Duration
	}
	return out
}

// findCutlist looks for a cut list in the part directory first, then for
// one named after the directory in its parent. The cut command leaves the
// cut list next to the source video, one level above the parts.
func (s *Server) findCutlist() string {
	if lists, err := batch.DiscoverCutlists(s.dir); err == nil && len(lists) > 0 {
		return lists[0]
	}

	lists, err := batch.DiscoverCutlists(filepath.Dir(s.dir))
	if err != nil {
		return ""
	}

	stem := filepath.Base(s.dir)
	for _, l := range lists {
		video := filepath.Base(batch.VideoForCutlist(l))
		if strings.TrimSuffix(video, filepath.Ext(video)) == stem {
			return l
		}
	}
	return ""
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", wrapped.statusCode,
			"duration", duration,
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
