// stkpush-relay/internal/handlers/middleware.go
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/stkpush-relay/internal/callback"
	m "github.com/example/stkpush-relay/pkg/metrics"
)

type ctxKey struct{}

const requestIDHeader = "X-Request-ID"

// RequestIDFrom returns the id assigned to the request carrying ctx.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

/*************** Metrics middleware ***************/
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		statusLabel := "FAILED"
		if rec.status >= 200 && rec.status < 400 {
			statusLabel = "SUCCESS"
		}
		route := routeLabel(r.URL.Path)
		m.IncRequest(route, statusLabel, r.Method)
		m.ObserveDuration(route, statusLabel, time.Since(start).Seconds())
	})
}

func routeLabel(path string) string {
	switch path {
	case PaymentPath:
		return "payment"
	case CallbackPath:
		return "callback"
	case ProbePath:
		return "probe"
	case "/healthz":
		return "healthz"
	default:
		return "other"
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// recoverer turns panics into JSON. The callback route keeps its 200
// acknowledgment so the gateway never retries because of a fault here.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			slog.ErrorContext(r.Context(), "handler panic", "path", r.URL.Path, "panic", fmt.Sprint(rv))
			if r.URL.Path == CallbackPath {
				writeJSON(w, http.StatusOK, callback.Ack{Status: callback.AckError, Message: callback.MsgProcessFailed})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorOut{Error: fmt.Sprint(rv)})
		}()
		next.ServeHTTP(w, r)
	})
}

// LogHandler adds the request id to every record logged with a request context.
type LogHandler struct{ slog.Handler }

func NewLogHandler(h slog.Handler) *LogHandler { return &LogHandler{Handler: h} }

func (h *LogHandler) Handle(ctx context.Context, rec slog.Record) error {
	if id := RequestIDFrom(ctx); id != "" {
		rec.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, rec)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{Handler: h.Handler.WithGroup(name)}
}
