package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"tunelingo/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the threshold above which a request logs at WARN.
const DefaultSlowRequestMs = 200

var requestSeq uint64

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// routeLabel collapses per-item paths onto their route so the collector
// aggregates per screen, not per share code or activity.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/share/"):
		return "/share/{code}"
	case strings.HasPrefix(path, "/api/share/"):
		return "/api/share/{code}"
	case strings.HasPrefix(path, "/api/favorites/"):
		return "/api/favorites/{activityId}"
	case strings.HasPrefix(path, "/admin/outbox/"):
		return "/admin/outbox/{id}/{action}"
	case strings.HasPrefix(path, "/admin/accounts/"):
		return "/admin/accounts/{id}"
	}
	return path
}

// Timing returns middleware that logs request duration and feeds the
// perf collector. Static assets are skipped. The slow threshold comes
// from TUNELINGO_SLOW_REQUEST_MS, read once when the mux is built.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := float64(DefaultSlowRequestMs)
	if v := os.Getenv("TUNELINGO_SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threshold = float64(n)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			seq := atomic.AddUint64(&requestSeq, 1)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			millis := float64(time.Since(start).Microseconds()) / 1000.0
			label := r.Method + " " + routeLabel(r.URL.Path)

			level := slog.LevelDebug
			event := "request"
			if millis >= threshold {
				level = slog.LevelWarn
				event = "slow_request"
			}
			slog.Log(r.Context(), level, event,
				"request_id", seq,
				"route", label,
				"status", rec.status,
				"duration_ms", millis,
			)

			if collector != nil {
				collector.Observe(perf.Sample{
					Origin: perf.OriginRequest,
					Label:  label,
					Status: rec.status,
					Millis: millis,
					At:     start,
				})
			}
		})
	}
}
