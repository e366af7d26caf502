package httpapi

import (
	"net/http"
	"strings"

	"seiyo-exam/internal/analytics"
	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/logger"
	"seiyo-exam/internal/snapshot"
)

const defaultMaxLogBytes = 2048

type RouterConfig struct {
	SnapshotDir string
	AdminToken  string
	Exams       *exam.Service
	Analytics   *analytics.Service
	Log         *logger.Logger
	// MaxLogBytes caps the response body preview logged for failed
	// requests. Zero uses the default.
	MaxLogBytes int
}

func NewRouter(cfg RouterConfig) http.Handler {
	api := NewAPI(cfg.Exams, cfg.Analytics, cfg.AdminToken, cfg.Log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", api.HandleHealth)
	mux.HandleFunc("/attempts", api.HandleSubmitAttempt)
	mux.HandleFunc("/admin/analytics", api.HandleAnalytics)
	if cfg.SnapshotDir != "" {
		mux.Handle("/snapshots/", http.StripPrefix("/snapshots", snapshotHandler(cfg.SnapshotDir)))
	}

	maxLogBytes := cfg.MaxLogBytes
	if maxLogBytes <= 0 {
		maxLogBytes = defaultMaxLogBytes
	}
	return withRequestLogging(api.log, maxLogBytes, mux)
}

// snapshotHandler serves the published tree read-only. Versioned snapshot
// files never change once written; manifest.json and subjects.json do.
func snapshotHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/"+snapshot.ManifestFile), strings.HasSuffix(r.URL.Path, "/"+snapshot.SubjectsFile):
			w.Header().Set("Cache-Control", "no-cache")
		case strings.HasSuffix(r.URL.Path, ".json"):
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		files.ServeHTTP(w, r)
	})
}
