package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/sub2clash/internal/applog"
)

// NewHandler returns the production handler (mux + observability middleware).
//
// Tests can still use NewMux directly to avoid noisy logs unless needed.
func NewHandler() http.Handler {
	return NewHandlerWithOptions(Options{})
}

func NewHandlerWithOptions(opt Options) http.Handler {
	return withObservability(NewMuxWithOptions(opt))
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// requestLogger returns the logger attached by withObservability, or a
// disabled logger outside of it.
func requestLogger(r *http.Request) zerolog.Logger {
	return *zerolog.Ctx(r.Context())
}

func withObservability(next http.Handler) http.Handler {
	base := applog.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := uuid.NewString()
		log := base.With().Str("request_id", reqID).Logger()
		r = r.WithContext(log.WithContext(r.Context()))
		w.Header().Set("X-Request-Id", reqID)

		sw := &statusWriter{ResponseWriter: w}
		func() {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					metricsIncAppError("internal", "PANIC")
					log.Error().Str("panic", fmt.Sprint(v)).Msg("handler panicked")
					if sw.status == 0 {
						WriteFailure(sw, fmt.Errorf("%v", v))
					}
				}
			}()
			next.ServeHTTP(sw, r)
		}()

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		pattern := r.Pattern
		if pattern == "" {
			// Keep it low-cardinality; avoid logging/querying RawQuery because it may contain secrets.
			pattern = r.Method + " " + r.URL.Path
		}

		metricsIncRequest(pattern, status)

		// Never log the query string: it carries the subscription URL.
		if r.URL.Path != "/healthz" && r.URL.Path != "/metrics" {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("pattern", pattern).
				Int("status", status).
				Dur("dur", time.Since(start).Round(time.Millisecond)).
				Int("bytes", sw.bytes).
				Msg("http")
		}
	})
}
