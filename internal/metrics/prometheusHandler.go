package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of ingestion jobs published minus consumed by this instance",
})

var deadLetteredJobs = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dead_lettered_jobs_total",
	Help: "Jobs moved to the dead-letter list after exhausting retries",
})

var statusStreamsOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "status_streams_open",
	Help: "Currently open document-status SSE streams",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) CaptureWriteHeaderMetrics(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps the recorder usable for SSE responses.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func IncrementDeadLetteredJobs() {
	deadLetteredJobs.Inc()
}

func IncrementOpenStatusStreams() {
	statusStreamsOpen.Inc()
}

func DecrementOpenStatusStreams() {
	statusStreamsOpen.Dec()
}

var ingestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingest_job_duration_seconds",
	Help:    "Total time spent processing one ingestion job.",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureIngestMetrics(outcome string, timeElapsed time.Duration) {
	ingestDuration.WithLabelValues(outcome).Observe(timeElapsed.Seconds())
}
