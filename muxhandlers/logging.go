package muxhandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalvas/swaggerpage/mux"
)

// LoggingConfig configures the access log middleware.
type LoggingConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Level is the record level for responses below 500. Server errors are
	// always logged at slog.LevelError. Defaults to slog.LevelInfo.
	Level slog.Level
}

// LoggingMiddleware returns a middleware that writes one record per request
// with method, route template, status, size, duration and request ID.
func LoggingMiddleware(cfg LoggingConfig) mux.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			level := cfg.Level
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routeLabel(r)),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", r.RemoteAddr),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			)
		})
	}
}

// routeLabel returns the matched route template, which keeps label and log
// cardinality bounded by the number of routes.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
