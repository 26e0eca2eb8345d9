// Package actions provides the reconciliation logic for tagreload.
// It matches an image tag event to running containers and replaces each match in place.
//
// Key components:
//   - Reload: Lists, inspects and reloads every container created from the tagged image.
//   - RunReloadWithNotifications: Runs Reload, sends notifications and summarizes the event as a metric.
//   - BuildRecreateSpec: Derives the replacement configuration from a listed and inspected container.
//   - GetPortList, GetPortMapping, GetPortHostIPs, GetHosts, GetVolumes, GetVolumeBinds: Pure extraction rules.
//
// Usage example:
//
//	reports, err := actions.Reload(ctx, client, event, actions.Options{})
//	if err != nil {
//	    logrus.WithError(err).Error("Reconciliation failed")
//	}
//	for _, r := range reports {
//	    logrus.WithField("container", r.ContainerName).Info("Handled")
//	}
//
// The package integrates with the types.Client interface and reports through
// metrics and types.Notifier, using logrus for logging operations and errors.
package actions
