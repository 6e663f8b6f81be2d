package mid

import (
	"net/http"
	"time"

	"github.com/pitwall-ai/pitwall/pkg/metrics"
)

// Metrics returns middleware that records request counts by status class
// and a latency histogram into the registry.
func Metrics(reg *metrics.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			class := statusClass(sw.status)
			reg.Counter(
				metrics.WithLabels("http_requests_total", "method", r.Method, "class", class),
				"HTTP requests by method and status class",
			).Inc()
			reg.Histogram("http_request_duration_seconds", "HTTP request latency", nil).Since(start)
		})
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
