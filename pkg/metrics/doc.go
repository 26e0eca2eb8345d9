// Package metrics provides tracking and exposure of tagreload reload metrics.
// It integrates with Prometheus to monitor tag events, reloaded containers and failures.
//
// Key components:
//   - Metrics: Handles metric queuing and updates.
//   - NewMetric: Creates metrics from reload reports.
//
// Usage example:
//
//	m := metrics.Default()
//	m.Register(metrics.NewMetric(reports))
//	if !m.QueueIsEmpty() {
//	    logrus.Info("Metrics queued")
//	}
//
// The package uses Prometheus for metrics exposure and integrates with types.ReloadReport.
package metrics
