// Package flags manages command-line flags and environment variables for tagreload.
// It configures the Docker connection, reload behavior, the HTTP API and notifications
// via Cobra and Viper.
//
// Key components:
//   - RegisterDockerFlags: Adds Docker API client flags.
//   - RegisterSystemFlags: Adds reload, HTTP API and logging flags.
//   - RegisterNotificationFlags: Adds notification settings.
//   - GetSecretsFromFiles: Replaces secret flag values that point at files.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterSystemFlags(cmd)
//	err := flags.SetupLogging(cmd.PersistentFlags())
//	if err != nil {
//	    logrus.WithError(err).Fatal("Logging setup failed")
//	}
package flags
