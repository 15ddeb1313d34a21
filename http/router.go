package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"loan-amortizer/metrics"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Loan        *LoanHandler
	Comparison  *TermComparisonHandler
	Metrics     *metrics.Registry
	RateLimiter *RateLimiter
}

// NewRouter wires the API routes. Only GET is served; other methods get 405.
func NewRouter(h Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, AccessLogMiddleware(h.Metrics))

	limited := func(fn http.HandlerFunc) http.Handler {
		return RateLimitMiddleware(h.RateLimiter, h.Metrics, fn)
	}

	r.Handle("/", limited(h.Loan.Amortize)).Methods(http.MethodGet)
	r.Handle("/amortize", limited(h.Loan.Amortize)).Methods(http.MethodGet)
	r.Handle("/summary", limited(h.Loan.Summary)).Methods(http.MethodGet)
	if h.Comparison != nil {
		r.Handle("/compare", limited(h.Comparison.Compare)).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		if err := h.Metrics.WriteText(w); err != nil {
			writeServiceError(w, req, err)
		}
	}).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method not allowed")
	}))
	r.NotFoundHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "not found")
	}))

	return r
}
