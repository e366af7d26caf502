package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatusRecorderWriteTracksAndTruncates(t *testing.T) {
	base := httptest.NewRecorder()
	recorder := &statusRecorder{
		ResponseWriter: base,
		statusCode:     http.StatusOK,
		maxLogBytes:    10,
	}

	payload := []byte("abcdefghijklmnopqrstuvwxyz")
	written, err := recorder.Write(payload)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if written != len(payload) {
		t.Fatalf("written bytes = %d, want %d", written, len(payload))
	}
	if recorder.bytesWritten != len(payload) {
		t.Fatalf("bytesWritten = %d, want %d", recorder.bytesWritten, len(payload))
	}
	if recorder.logBody.Len() != 10 {
		t.Fatalf("log body length = %d, want 10", recorder.logBody.Len())
	}
	if !recorder.truncated {
		t.Fatalf("expected truncated flag to be true")
	}
}

func TestStatusRecorderWithinLimit(t *testing.T) {
	recorder := &statusRecorder{
		ResponseWriter: httptest.NewRecorder(),
		statusCode:     http.StatusOK,
		maxLogBytes:    10,
	}

	if _, err := recorder.Write([]byte("abc")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	recorder.WriteHeader(http.StatusTeapot)
	if recorder.truncated || recorder.logBody.String() != "abc" || recorder.statusCode != http.StatusTeapot {
		t.Fatalf("unexpected recorder state: body=%q truncated=%t status=%d", recorder.logBody.String(), recorder.truncated, recorder.statusCode)
	}
}

func TestSnapshotHandlerServesTree(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "KTS2"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"version":1,"files":[]}`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "KTS2", "TK-questions.v1.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	router := NewRouter(RouterConfig{SnapshotDir: dir})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots/manifest.json", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"version":1`) {
		t.Fatalf("manifest response = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-cache" {
		t.Fatalf("manifest Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshots/KTS2/TK-questions.v1.json", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Cache-Control"), "immutable") {
		t.Fatalf("snapshot response = %d cache=%q", rec.Code, rec.Header().Get("Cache-Control"))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshots/manifest.json", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST snapshot status = %d, want 405", rec.Code)
	}
}
