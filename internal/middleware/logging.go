// Package middleware holds the request-scoped HTTP middleware that isn't tied
// to authentication (bearer-token checks live in internal/auth).
//
// Every middleware here has chi's shape, func(http.Handler) http.Handler, so
// the router mounts it with r.Use:
//
//	r.Use(chimiddleware.RequestID) // tags the request
//	r.Use(middleware.Logger(log))  // logs it once the handler returns
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// statusRecorder remembers what a handler sent so Logger can report it.
//
// Only the first WriteHeader counts, the same as net/http: later calls are
// ignored by the server, so they are ignored here too. A handler that calls
// Write without WriteHeader has implicitly sent 200.
type statusRecorder struct {
	http.ResponseWriter

	status      int
	bytes       int64
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.status = http.StatusOK
		rec.wroteHeader = true
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the real writer (flushing,
// deadlines) through the recorder.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Logger writes one "request completed" line per request:
//
//	requestID  from chi's RequestID, so mount Logger after it
//	method     GET, POST, ...
//	path       URL path only; the query string can carry paging noise
//	status     what the client actually got
//	duration   time spent in the rest of the chain
//	bytes      response body size
//
// The level follows the status. A 5xx is an Error: the store is down or a
// handler panicked (Recoverer sits inside Logger). A 4xx is a Warn, since a
// run of 401s on /auth/login is somebody guessing passwords. The rest is Info.
//
// Headers and bodies are never logged: they carry passwords and bearer tokens.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Log(r.Context(), levelFor(rec.status), "request completed",
				slog.String("requestID", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", rec.bytes),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
