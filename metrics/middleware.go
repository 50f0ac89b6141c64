package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// unmatchedRoute labels requests no route pattern claimed, so scanners
// hitting random paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency, response size and in-flight
// requests per route pattern: "/medicine/alternatives?name=x" is labelled
// "/medicine/alternatives".
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routeLabel(r)

		HTTPRequestTotals.WithLabelValues(r.Method, route, statusLabel(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(ww.BytesWritten()))
	})
}

// routeLabel is only meaningful after the router has run
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// statusLabel maps the zero status of a handler that never wrote to 200
func statusLabel(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status)
}
