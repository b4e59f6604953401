package segment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors updated by writers. A nil *Metrics
// records nothing.
type Metrics struct {
	rowsWritten     prometheus.Counter
	bytesWritten    prometheus.Counter
	segmentsTotal   *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	segmentDuration prometheus.Histogram
}

// NewMetrics creates the writer metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		rowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "pegasus_segment_rows_written_total",
			Help: "Total number of rows flushed to segment files",
		}),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "pegasus_segment_bytes_written_total",
			Help: "Total number of row bytes flushed to segment files",
		}),
		segmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pegasus_segments_total",
			Help: "Total number of segment writes by outcome",
		}, []string{"status"}),
		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pegasus_segment_failures_total",
			Help: "Total number of segment writer failures by kind",
		}, []string{"kind"}),
		segmentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pegasus_segment_write_duration_seconds",
			Help:    "Time taken by WriteRows",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeRow(size int) {
	if m == nil {
		return
	}
	m.rowsWritten.Inc()
	m.bytesWritten.Add(float64(size))
}

func (m *Metrics) observeFailure(err error) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(errorKind(err)).Inc()
}

func (m *Metrics) observeSegment(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.segmentsTotal.WithLabelValues(status).Inc()
	m.segmentDuration.Observe(d.Seconds())
}
