package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinvision_stage_completed_total",
			Help: "Total number of pipeline stages completed",
		},
		[]string{"stage"},
	)

	StageFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinvision_stage_failed_total",
			Help: "Total number of pipeline stages failed",
		},
		[]string{"stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "coinvision_stage_duration_seconds",
			Help: "Duration of pipeline stage processing in seconds",
		},
		[]string{"stage"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinvision_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "coinvision_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method"},
	)
)

// ObserveStage records a stage outcome and its duration.
func ObserveStage(stage string, start time.Time, err error) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		StageFailed.WithLabelValues(stage).Inc()
		return
	}
	StageCompleted.WithLabelValues(stage).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency per method.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
