package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"member-tracker-go/internal/domain/notification"
)

const namespace = "member_tracker"

var (
	dispatchCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "dispatch_total",
		Help:      "The total number of notification dispatches by kind and outcome",
	}, []string{"kind", "outcome"})

	reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "build_duration_seconds",
		Help:      "Time spent assembling reports",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "result"})

	jobCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "runs_total",
		Help:      "The total number of scheduled job runs",
	}, []string{"job"})

	deliveryCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "jobs",
		Name:      "deliveries_total",
		Help:      "The total number of report deliveries handled by the worker pool",
	}, []string{"kind", "result"})
)

// Recorder implements the metric ports used by notifications and jobs.
type Recorder struct{}

var _ notification.Metrics = Recorder{}

func New() Recorder {
	return Recorder{}
}

func (Recorder) DispatchOutcome(kind notification.Kind, outcome notification.Outcome) {
	dispatchCounter.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (Recorder) ReportBuilt(kind notification.Kind, elapsed time.Duration, err error) {
	reportDuration.WithLabelValues(string(kind), result(err)).Observe(elapsed.Seconds())
}

func (Recorder) JobRun(job string) {
	jobCounter.WithLabelValues(job).Inc()
}

func (Recorder) Delivered(kind notification.Kind, err error) {
	deliveryCounter.WithLabelValues(string(kind), result(err)).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
