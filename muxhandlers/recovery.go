package muxhandlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/vitalvas/swaggerpage/mux"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// Logger receives one error record per recovered panic, with the
	// request ID and stack. Defaults to slog.Default().
	Logger *slog.Logger

	// OnPanic is an optional callback invoked with the request and the
	// recovered value, after logging.
	OnPanic func(r *http.Request, err any)
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers and answers 500 Internal Server Error.
// http.ErrAbortHandler is re-panicked so the server aborts the response.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()),
				)

				if cfg.OnPanic != nil {
					cfg.OnPanic(r, err)
				}

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
