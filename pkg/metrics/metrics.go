package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

var metrics *Metrics

// Metric holds data points from the reconciliation of one tag event.
type Metric struct {
	Matched  int // Number of running containers whose image matched the event.
	Reloaded int // Number of containers removed, recreated and started.
	Failed   int // Number of matched containers whose reload did not complete.
}

// Metrics handles processing and exposing reload metrics.
type Metrics struct {
	channel        chan *Metric       // Channel for queuing metrics.
	matched        prometheus.Gauge   // Gauge for matched containers of the last event.
	reloadedTotal  prometheus.Counter // Counter for total reloaded containers.
	failedTotal    prometheus.Counter // Counter for total failed reloads.
	events         prometheus.Counter // Counter for handled tag events.
	eventsFailed   prometheus.Counter // Counter for tag events whose reconciliation aborted.
	reconnects     prometheus.Counter // Counter for event stream reconnects.
	dropped        prometheus.Counter // Counter for dropped metrics.
	stopCh         chan struct{}      // Channel for shutdown signaling.
	shutdownOnce   sync.Once          // Ensures shutdown is called only once.
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
		matched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tagreload_containers_matched",
			Help: "Number of running containers matching the image of the last tag event",
		}),
		reloadedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagreload_containers_reloaded_total",
			Help: "Number of containers reloaded since tagreload started",
		}),
		failedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagreload_containers_failed_total",
			Help: "Number of container reloads that did not complete since tagreload started",
		}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagreload_events_total",
			Help: "Number of image tag events handled since tagreload started",
		}),
		eventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagreload_events_failed_total",
			Help: "Number of image tag events whose reconciliation was aborted",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagreload_stream_reconnects_total",
			Help: "Number of times the Docker event stream was re-subscribed",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagreload_metrics_dropped_total",
			Help: "Number of metrics dropped due to full channel",
		}),
		channel: make(chan *Metric, channelBufferSize),
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	metricsList := []prometheus.Collector{
		metrics.matched,
		metrics.reloadedTotal,
		metrics.failedTotal,
		metrics.events,
		metrics.eventsFailed,
		metrics.reconnects,
		metrics.dropped,
	}
	for _, m := range metricsList {
		if err := registry.Register(m); err != nil {
			cancel()

			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	go metrics.HandleUpdate()

	return metrics, nil
}

// NewMetric creates a Metric from the reload reports of one tag event.
//
// Parameters:
//   - reports: One report per matched container.
//
// Returns:
//   - *Metric: New metric instance.
func NewMetric(reports []types.ReloadReport) *Metric {
	metric := &Metric{Matched: len(reports)}

	for _, report := range reports {
		if report.Failed() {
			metric.Failed++
		} else {
			metric.Reloaded++
		}
	}

	return metric
}

// QueueIsEmpty checks if the metrics channel is empty.
//
// Returns:
//   - bool: True if empty, false otherwise.
func (m *Metrics) QueueIsEmpty() bool {
	return len(m.channel) == 0
}

// Register attempts to enqueue a metric for processing.
// If the channel is full, the metric is dropped and the dropped counter is incremented.
// A nil metric records an event whose reconciliation was aborted.
//
// Parameters:
//   - metric: Metric to register.
func (m *Metrics) Register(metric *Metric) {
	select {
	case m.channel <- metric:
	default:
		m.dropped.Inc()
	}
}

// RegisterReconnect counts a re-subscription to the event stream.
func (m *Metrics) RegisterReconnect() {
	m.reconnects.Inc()
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

// Shutdown gracefully stops the metrics processing goroutine.
// This method is idempotent and can be called multiple times safely.
func (m *Metrics) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
		m.cancel()
	})
}

// HandleUpdate processes metrics from the channel.
func (m *Metrics) HandleUpdate() {
	for {
		select {
		case change, ok := <-m.channel:
			if !ok {
				return
			}

			m.events.Inc()

			if change == nil {
				// Reconciliation aborted before any container was matched.
				m.eventsFailed.Inc()
				m.matched.Set(0)

				continue
			}

			m.matched.Set(float64(change.Matched))
			m.reloadedTotal.Add(float64(change.Reloaded))
			m.failedTotal.Add(float64(change.Failed))
		case <-m.stopCh:
			return
		case <-m.ctx.Done():
			return
		}
	}
}
