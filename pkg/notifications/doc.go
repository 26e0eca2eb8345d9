// Package notifications sends tagreload reload outcomes through Shoutrrr.
// One message is sent per reloaded or failed container.
//
// Key components:
//   - NewNotifier: Builds a types.Notifier from the notification flags.
//   - GetTitle, GetTemplateData: Title and static template data.
//   - templates.Funcs: Helper functions available to custom templates.
//
// Usage example:
//
//	notifier, err := notifications.NewNotifier(cmd)
//	if err != nil {
//	    logrus.WithError(err).Fatal("Invalid notification configuration")
//	}
//	if notifier != nil {
//	    defer notifier.Close()
//	}
//
// Messages are rendered with text/template and sent from a background goroutine.
package notifications
