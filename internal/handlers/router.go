// stkpush-relay/internal/handlers/router.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/example/stkpush-relay/internal/callback"
)

const (
	ServiceName = "stkpush-relay"

	PaymentPath  = "/api/payment"
	CallbackPath = "/api/callback"
	ProbePath    = "/api/test"
)

var corsOptions = cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{http.MethodGet, http.MethodOptions, http.MethodPatch, http.MethodDelete, http.MethodPost, http.MethodPut},
	AllowedHeaders:   []string{"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version", "Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version"},
	AllowCredentials: true,

	OptionsSuccessStatus: http.StatusOK,
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	// OPTIONS without preflight headers still gets an empty 200
	for _, p := range []string{PaymentPath, CallbackPath, ProbePath} {
		r.Path(p).Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}

	// metrics & health
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"service": ServiceName,
			"ts":      time.Now().UTC(),
		})
	}).Methods(http.MethodGet)

	// API
	r.HandleFunc(PaymentPath, PaymentHandler(d.Initiator)).Methods(http.MethodPost)
	r.HandleFunc(CallbackPath, CallbackHandler(d.Receiver)).Methods(http.MethodPost)
	r.HandleFunc(ProbePath, ProbeHandler(d.Prober)).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorOut{Message: "Not found"})
	})

	var h http.Handler = r
	h = recoverer(h)
	h = metricsMiddleware(h)
	h = accessLog(h)
	h = requestID(h)
	return cors.New(corsOptions).Handler(h)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == CallbackPath {
		writeJSON(w, http.StatusMethodNotAllowed, callback.Ack{Status: callback.AckError, Message: "Method not allowed"})
		return
	}
	writeJSON(w, http.StatusMethodNotAllowed, errorOut{Message: "Method not allowed"})
}
