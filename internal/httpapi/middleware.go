package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"seiyo-exam/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	maxLogBytes  int
	logBody      bytes.Buffer
	bytesWritten int
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	written, err := r.ResponseWriter.Write(p)
	r.bytesWritten += written

	remaining := r.maxLogBytes - r.logBody.Len()
	if remaining > 0 {
		if written > remaining {
			r.logBody.Write(p[:remaining])
			r.truncated = true
		} else {
			r.logBody.Write(p[:written])
		}
	} else if written > 0 {
		r.truncated = true
	}
	return written, err
}

// withRequestLogging logs one line per request. Bodies are only logged for
// failed requests.
func withRequestLogging(log *logger.Logger, maxLogBytes int, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLogBytes,
		}

		next.ServeHTTP(recorder, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"bytes", recorder.bytesWritten,
			"duration", time.Since(started),
		}
		if recorder.statusCode >= http.StatusBadRequest {
			fields = append(fields, "body", recorder.logBody.String(), "truncated", recorder.truncated)
		}

		switch {
		case recorder.statusCode >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case recorder.statusCode >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	})
}
