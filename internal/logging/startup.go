// Package logging writes tagreload's startup information.
package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/tagreload/internal/api"
	"github.com/nicholas-fedor/tagreload/internal/util"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// WriteStartupMessage logs startup information based on configuration flags.
//
// It reports the version, the Docker API version in use, notification setup, reload
// behavior and HTTP API status.
//
// Parameters:
//   - c: The cobra.Command instance, providing access to flags like --no-startup-message.
//   - client: The Docker client instance used to retrieve API version information.
//   - notifier: The notification system instance; may be nil.
//   - version: The version string to include in the message.
func WriteStartupMessage(
	c *cobra.Command,
	client types.Client,
	notifier types.Notifier,
	version string,
) {
	flags := c.PersistentFlags()

	if noStartupMessage, _ := flags.GetBool("no-startup-message"); noStartupMessage {
		return
	}

	startupLog := logrus.NewEntry(logrus.StandardLogger())

	var apiVersion string
	if client != nil {
		apiVersion = client.GetVersion()
	}

	startupLog.Info("tagreload ", version, " using Docker API v", apiVersion)

	var notifierNames []string
	if notifier != nil {
		notifierNames = notifier.GetNames()
	}

	LogNotifierInfo(startupLog, notifierNames)
	LogReloadInfo(startupLog, c)

	if enableMetrics, _ := flags.GetBool("http-api-metrics"); enableMetrics {
		host, _ := flags.GetString("http-api-host")
		port, _ := flags.GetString("http-api-port")

		startupLog.Info(fmt.Sprintf("The HTTP API is enabled at %s.", api.GetAPIAddr(host, port)))
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		startupLog.Warn(
			"Trace level enabled: log will include sensitive information as credentials and tokens",
		)
	}
}

// LogNotifierInfo logs the configured notifier names, or that there are none.
func LogNotifierInfo(log *logrus.Entry, notifierNames []string) {
	if len(notifierNames) > 0 {
		log.Info("Using notifications: " + strings.Join(notifierNames, ", "))
	} else {
		log.Info("Using no notifications")
	}
}

// LogReloadInfo logs how tag events will be handled.
func LogReloadInfo(log *logrus.Entry, c *cobra.Command) {
	flags := c.PersistentFlags()

	log.Info("Watching for image tag events")

	if preserveName, _ := flags.GetBool("preserve-name"); preserveName {
		log.Info("Replacement containers keep the name of the container they replace")
	}

	maxElapsed, _ := flags.GetDuration("reconnect-max-elapsed")
	if maxElapsed > 0 {
		log.Info("Giving up on a broken event stream after " + util.FormatDuration(maxElapsed.Round(time.Second)))
	} else {
		log.Debug("Reconnecting to a broken event stream indefinitely")
	}
}
