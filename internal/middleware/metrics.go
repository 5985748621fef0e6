// Package middleware provides HTTP middleware for metrics collection and
// caller identification.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nadmax/yantodo/internal/metrics"
)

var recordHTTPRequest = metrics.RecordHTTPRequest

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		endpoint := normalizeEndpoint(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		recordHTTPRequest(r.Method, endpoint, status, duration)
	})
}

const todosPrefix = "/api/todos/"

func normalizeEndpoint(path string) string {
	switch {
	case path == todosPrefix+"cleanup-scheduled":
		return path
	case strings.HasPrefix(path, todosPrefix) && len(path) > len(todosPrefix) && !strings.Contains(path[len(todosPrefix):], "/"):
		return "/api/todos/:id"
	default:
		return path
	}
}
