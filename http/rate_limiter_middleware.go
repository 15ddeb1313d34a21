package http

import (
	"net"
	"net/http"

	"loan-amortizer/metrics"
)

// RateLimitMiddleware rejects clients that have used up their bucket with
// 429. A nil limiter disables limiting.
func RateLimitMiddleware(
	limiter *RateLimiter,
	reg *metrics.Registry,
	next http.Handler,
) http.Handler {
	if limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !limiter.Allow(ip) {
			reg.Inc(metrics.RateLimitedTotal)
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
