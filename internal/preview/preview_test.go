package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gopcut/gopcut/internal/cutlist"
	"github.com/gopcut/gopcut/internal/timecode"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

// createTestCutDir lays out a finished cut: a parts directory "show" with
// two parts, and the cut list next to the source video one level up.
func createTestCutDir(t *testing.T) string {
	t.Helper()

	parent := t.TempDir()
	dir := filepath.Join(parent, "show")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("Failed to create parts dir: %v", err)
	}

	for _, name := range []string{"show_part_000.mkv", "show_part_001.mkv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("fake video data"), 0o644); err != nil {
			t.Fatalf("Failed to write part: %v", err)
		}
	}

	cl := cutlist.Cutlist{
		FPS: 25.0,
		Segments: []timecode.Segment{
			{Start: 10.0, Duration: 3.5},
			{Start: 20.0, Duration: 2.25},
		},
	}
	if err := cutlist.WriteFile(filepath.Join(parent, "show.mkv.cutlist.txt"), cl); err != nil {
		t.Fatalf("Failed to write cut list: %v", err)
	}

	return dir
}

func createTestServer(t *testing.T, dir string) *Server {
	srv, err := New(dir, 8080, createTestLogger())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return srv
}

func TestNew(t *testing.T) {
	dir := createTestCutDir(t)

	srv := createTestServer(t, dir)
	if srv.dir != dir {
		t.Errorf("Expected dir %q, got %q", dir, srv.dir)
	}
	if srv.port != 8080 {
		t.Error("Port not set correctly")
	}
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New("/nonexistent/parts", 8080, createTestLogger()); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

func TestNewNotADirectory(t *testing.T) {
	dir := createTestCutDir(t)

	if _, err := New(filepath.Join(dir, "show_part_000.mkv"), 8080, createTestLogger()); err == nil {
		t.Error("Expected an error for a file path")
	}
}

func TestHandlePlaylist(t *testing.T) {
	srv := createTestServer(t, createTestCutDir(t))

	req := httptest.NewRequest("GET", "/playlist.m3u8", nil)
	w := httptest.NewRecorder()

	srv.handlePlaylist(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/vnd.apple.mpegurl" {
		t.Errorf("Expected Content-Type 'application/vnd.apple.mpegurl', got '%s'", contentType)
	}

	cacheControl := resp.Header.Get("Cache-Control")
	if !strings.Contains(cacheControl, "no-cache") {
		t.Errorf("Expected Cache-Control with 'no-cache', got '%s'", cacheControl)
	}

	corsHeader := resp.Header.Get("Access-Control-Allow-Origin")
	if corsHeader != "*" {
		t.Errorf("Expected CORS header '*', got '%s'", corsHeader)
	}

	body := w.Body.String()
	if !strings.Contains(body, "#EXTM3U") {
		t.Error("Response body missing #EXTM3U tag")
	}
	if !strings.Contains(body, "#EXT-X-PLAYLIST-TYPE:VOD") {
		t.Error("Response body missing VOD playlist type")
	}
	if !strings.Contains(body, "parts/show_part_000.mkv") {
		t.Error("Response body missing first part URI")
	}
	if !strings.Contains(body, "parts/show_part_001.mkv") {
		t.Error("Response body missing second part URI")
	}
	if !strings.Contains(body, "#EXT-X-ENDLIST") {
		t.Error("Response body missing #EXT-X-ENDLIST tag")
	}
}

func TestHandlePlaylistWithoutCutlist(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "show_part_000.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write part: %v", err)
	}

	srv := createTestServer(t, dir)

	req := httptest.NewRequest("GET", "/playlist.m3u8", nil)
	w := httptest.NewRecorder()

	srv.handlePlaylist(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "parts/show_part_000.mkv") {
		t.Error("Response body missing part URI")
	}
}

func TestHandlePlaylistEmptyDir(t *testing.T) {
	srv := createTestServer(t, t.TempDir())

	req := httptest.NewRequest("GET", "/playlist.m3u8", nil)
	w := httptest.NewRecorder()

	srv.handlePlaylist(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for an empty directory, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := createTestServer(t, createTestCutDir(t))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	var health map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to parse JSON response: %v", err)
	}

	if health["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%v'", health["status"])
	}

	stats, ok := health["stats"].(map[string]interface{})
	if !ok {
		t.Fatal("Stats is not a map")
	}

	if parts := stats["parts"].(float64); parts != 2 {
		t.Errorf("Expected 2 parts, got %v", parts)
	}
	if total := stats["total_duration"].(float64); total != 5.75 {
		t.Errorf("Expected total_duration 5.75, got %v", total)
	}
	if _, ok := stats["directory"]; !ok {
		t.Error("Stats missing 'directory' field")
	}
}

func TestServePartFile(t *testing.T) {
	srv := createTestServer(t, createTestCutDir(t))

	req := httptest.NewRequest("GET", "/parts/show_part_000.mkv", nil)
	w := httptest.NewRecorder()

	srv.handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "fake video data" {
		t.Errorf("Expected part contents, got '%s'", w.Body.String())
	}
}

func TestServePartFileMissing(t *testing.T) {
	srv := createTestServer(t, createTestCutDir(t))

	req := httptest.NewRequest("GET", "/parts/show_part_099.mkv", nil)
	w := httptest.NewRecorder()

	srv.handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	srv := createTestServer(t, createTestCutDir(t))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test"))
	})

	wrapped := srv.loggingMiddleware(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "test" {
		t.Errorf("Expected body 'test', got '%s'", w.Body.String())
	}
}

func TestResponseWriterCapturesStatusCode(t *testing.T) {
	wrapped := &responseWriter{
		ResponseWriter: httptest.NewRecorder(),
		statusCode:     http.StatusOK,
	}

	wrapped.WriteHeader(http.StatusNotFound)

	if wrapped.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", wrapped.statusCode)
	}
}

func TestServerStartStop(t *testing.T) {
	srv := createTestServer(t, createTestCutDir(t))
	srv.port = 0 // automatic port assignment

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("Expected nil or ErrServerClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server did not stop within timeout")
	}
}
