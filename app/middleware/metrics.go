package middleware

import (
	"net/http"
	"strconv"
	"time"

	"microsocial/app/metrics"
)

// Metrics records request counts and latencies per route template
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			route := routeTemplate(r)
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status())).Inc()
			m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
