package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

var metrics *Metrics

// Result is the terminal result of a single notification.
type Result string

// Notification results used as the "result" label value.
const (
	ResultDelivered Result = "delivered"
	ResultSkipped   Result = "skipped"
	ResultExhausted Result = "exhausted"
	ResultCancelled Result = "cancelled"
)

// Metric holds data points from a single job run.
type Metric struct {
	Status   types.Status  // Outcome status of the job.
	Duration time.Duration // Wall time of the job command.
	Notified bool          // Whether the notification was delivered or deliberately skipped.
}

// Metrics handles processing and exposing job and delivery metrics.
type Metrics struct {
	channel         chan *Metric           // Channel for queuing job metrics.
	notifications   *prometheus.CounterVec // Notifications by status and result.
	attempts        prometheus.Counter     // HTTP delivery attempts.
	failures        prometheus.Counter     // Failed HTTP delivery attempts.
	jobs            *prometheus.CounterVec // Job runs by status.
	jobsSkipped     prometheus.Counter     // Job runs skipped because another run held the lock.
	lastJobDuration prometheus.Gauge       // Duration of the last job run.
	dropped         prometheus.Counter     // Job metrics dropped due to a full channel.
	stopCh          chan struct{}          // Channel for shutdown signaling.
	shutdownOnce    sync.Once              // Ensures shutdown is called only once.
	//nolint:containedctx
	ctx    context.Context    // Context for cancellation.
	cancel context.CancelFunc // Cancel function for the context.
}

// NewWithRegistry creates a new Metrics handler with a custom Prometheus registry.
//
// Parameters:
//   - registry: Prometheus registerer to use for metric registration.
//
// Returns:
//   - (*Metrics, error): Metrics handler with Prometheus metrics and goroutine, or an error if registration fails.
func NewWithRegistry(registry prometheus.Registerer) (*Metrics, error) {
	// channelBufferSize sets the metrics channel capacity.
	const channelBufferSize = 10

	ctx, cancel := context.WithCancel(context.Background())

	metrics := &Metrics{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backupnotify_notifications_total",
			Help: "Number of notifications handled, by job status and delivery result",
		}, []string{"status", "result"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backupnotify_delivery_attempts_total",
			Help: "Number of HTTP delivery attempts made",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backupnotify_delivery_failures_total",
			Help: "Number of HTTP delivery attempts that failed with a transport error or non-200 status",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backupnotify_jobs_total",
			Help: "Number of job runs, by outcome status",
		}, []string{"status"}),
		jobsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backupnotify_jobs_skipped_total",
			Help: "Number of scheduled job runs skipped because a previous run was still active",
		}),
		lastJobDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backupnotify_last_job_duration_seconds",
			Help: "Duration of the most recent job run in seconds",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backupnotify_metrics_dropped_total",
			Help: "Number of job metrics dropped due to full channel",
		}),
		channel: make(chan *Metric, channelBufferSize),
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	metricsList := []prometheus.Collector{
		metrics.notifications,
		metrics.attempts,
		metrics.failures,
		metrics.jobs,
		metrics.jobsSkipped,
		metrics.lastJobDuration,
		metrics.dropped,
	}
	for _, m := range metricsList {
		if err := registry.Register(m); err != nil {
			cancel()

			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	go metrics.HandleJobs()

	return metrics, nil
}

// Default initializes or returns the singleton Metrics handler. It panics on registration failure, such as duplicate registration against the default registry.
//
// Returns:
//   - *Metrics: Metrics handler with Prometheus metrics and goroutine.
func Default() *Metrics {
	if metrics != nil {
		return metrics
	}

	var err error

	metrics, err = NewWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}

	return metrics
}

// RecordAttempt counts one HTTP delivery attempt.
func (m *Metrics) RecordAttempt() {
	if m == nil {
		return
	}

	m.attempts.Inc()
}

// RecordFailure counts one failed HTTP delivery attempt.
func (m *Metrics) RecordFailure() {
	if m == nil {
		return
	}

	m.failures.Inc()
}

// RecordNotification counts a notification reaching a terminal result.
//
// Parameters:
//   - status: Job status the notification reported.
//   - result: Terminal delivery result.
func (m *Metrics) RecordNotification(status types.Status, result Result) {
	if m == nil {
		return
	}

	m.notifications.WithLabelValues(status.String(), string(result)).Inc()
}

// QueueIsEmpty checks if the job metrics channel is empty.
//
// Returns:
//   - bool: True if empty, false otherwise.
func (m *Metrics) QueueIsEmpty() bool {
	return len(m.channel) == 0
}

// RegisterJob attempts to enqueue a job metric for processing.
// A nil metric records a skipped run. If the channel is full, the metric is dropped and the dropped
// counter is incremented.
//
// Parameters:
//   - metric: Metric to register.
func (m *Metrics) RegisterJob(metric *Metric) {
	if m == nil {
		return
	}

	select {
	case m.channel <- metric:
	default:
		m.dropped.Inc()
	}
}

// Shutdown gracefully stops the metrics processing goroutine.
// This method is idempotent and can be called multiple times safely.
func (m *Metrics) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
		m.cancel()
	})
}

// HandleJobs processes job metrics from the channel.
func (m *Metrics) HandleJobs() {
	for {
		select {
		case change, ok := <-m.channel:
			if !ok {
				return
			}

			if change == nil {
				// Run was skipped because another one held the lock.
				m.jobsSkipped.Inc()

				continue
			}

			m.jobs.WithLabelValues(change.Status.String()).Inc()
			m.lastJobDuration.Set(change.Duration.Seconds())
		case <-m.stopCh:
			return
		case <-m.ctx.Done():
			return
		}
	}
}
