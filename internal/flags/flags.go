// Package flags manages command-line flags and environment variables for tagreload.
package flags

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// defaultHTTPAPIPort is the port the optional HTTP API listens on.
const defaultHTTPAPIPort = "8080"

// errInvalidLogFormat indicates an invalid log format was specified.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errOpenFileFailed indicates a failure to open a file for reading secrets.
var errOpenFileFailed = errors.New("failed to open secret file")

// errCloseFileFailed indicates a failure to close a file after reading secrets.
var errCloseFileFailed = errors.New("failed to close secret file")

// errReplaceSliceFailed indicates a failure to replace a slice value in a flag.
var errReplaceSliceFailed = errors.New("failed to replace slice value in flag")

// errReadFileFailed indicates a failure to read a file's contents.
var errReadFileFailed = errors.New("failed to read secret file")

// errSetFlagFailed indicates a failure to read or set a flag's value.
var errSetFlagFailed = errors.New("failed to set flag value")

// errInvalidFlagName indicates a flag lookup found nothing.
var errInvalidFlagName = errors.New("invalid flag name provided")

// RegisterDockerFlags adds flags used directly by the Docker API client to the root command.
func RegisterDockerFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP("host", "H", envString("DOCKER_HOST"), "daemon socket to connect to")
	flags.BoolP("tlsverify", "v", envBool("DOCKER_TLS_VERIFY"), "use TLS and verify the remote")
	flags.String(
		"cert-path",
		envString("DOCKER_CERT_PATH"),
		"directory holding ca.pem, cert.pem and key.pem (defaults to ~/.docker)")
	flags.StringP(
		"api-version",
		"a",
		envString("DOCKER_API_VERSION"),
		"api version to use by docker client (negotiated when empty)",
	)
	flags.Bool(
		"tls-skip-hostname-check",
		envBool("TAGRELOAD_TLS_SKIP_HOSTNAME_CHECK"),
		"Verify the daemon certificate chain but not its hostname")
}

// RegisterSystemFlags adds flags that modify the program flow to the root command.
// These flags control reload behavior, the HTTP API and logging.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.Bool(
		"preserve-name",
		envBool("TAGRELOAD_PRESERVE_NAME"),
		"Give the replacement container the name of the container it replaces")

	flags.Duration(
		"reconnect-max-elapsed",
		envDuration("TAGRELOAD_RECONNECT_MAX_ELAPSED"),
		"Give up reconnecting to the event stream after this long (0 retries forever)")

	flags.Bool(
		"no-startup-message",
		envBool("TAGRELOAD_NO_STARTUP_MESSAGE"),
		"Prevents tagreload from logging a startup message")

	flags.Bool(
		"http-api-metrics",
		envBool("TAGRELOAD_HTTP_API_METRICS"),
		"Runs tagreload with the Prometheus metrics API enabled")

	flags.String(
		"http-api-host",
		envString("TAGRELOAD_HTTP_API_HOST"),
		"Host to bind the HTTP API to (default: all interfaces)")

	flags.String(
		"http-api-port",
		envString("TAGRELOAD_HTTP_API_PORT"),
		"Port for the HTTP API")

	flags.String(
		"http-api-token",
		envString("TAGRELOAD_HTTP_API_TOKEN"),
		"Sets an authentication token to HTTP API requests.")

	flags.String(
		"log-format",
		envString("TAGRELOAD_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON")

	flags.StringP(
		"log-level",
		"",
		envString("TAGRELOAD_LOG_LEVEL"),
		"The maximum log level that will be written to STDOUT. Possible values: panic, fatal, error, warn, info, debug or trace")

	flags.BoolP(
		"debug",
		"d",
		envBool("TAGRELOAD_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.Bool(
		"trace",
		envBool("TAGRELOAD_TRACE"),
		"Enable trace mode with very verbose logging - caution, exposes credentials")

	flags.Bool(
		"no-color",
		viper.IsSet("NO_COLOR"),
		"Disable ANSI color escape codes in log output")
}

// RegisterNotificationFlags adds notification-related flags to the root command.
func RegisterNotificationFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringArray(
		"notification-url",
		envStringSlice("TAGRELOAD_NOTIFICATION_URL"),
		"The shoutrrr URL to send notifications to")

	flags.String(
		"notification-template",
		envString("TAGRELOAD_NOTIFICATION_TEMPLATE"),
		"The shoutrrr text/template for the messages")

	flags.String(
		"notifications-hostname",
		envString("TAGRELOAD_NOTIFICATIONS_HOSTNAME"),
		"Custom hostname for notification titles")

	flags.String(
		"notification-title-tag",
		envString("TAGRELOAD_NOTIFICATION_TITLE_TAG"),
		"Title prefix tag for notifications")

	flags.Bool(
		"notification-skip-title",
		envBool("TAGRELOAD_NOTIFICATION_SKIP_TITLE"),
		"Do not pass the title param to notifications")

	flags.Bool(
		"notification-log-stdout",
		envBool("TAGRELOAD_NOTIFICATION_LOG_STDOUT"),
		"Write notification logs to stdout instead of logging (to stderr)")
}

func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

func envDuration(key string) time.Duration {
	viper.MustBindEnv(key)

	return viper.GetDuration(key)
}

// SetDefaults configures default values for environment variables.
// DOCKER_HOST has no default so the client falls back to the local socket.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("TAGRELOAD_HTTP_API_PORT", defaultHTTPAPIPort)
	viper.SetDefault("TAGRELOAD_RECONNECT_MAX_ELAPSED", time.Duration(0))
	viper.SetDefault("TAGRELOAD_NOTIFICATION_URL", []string{})
	viper.SetDefault("TAGRELOAD_LOG_LEVEL", "info")
	viper.SetDefault("TAGRELOAD_LOG_FORMAT", "auto")
}

// GetSecretsFromFiles replaces secret flag values with file contents if they reference files.
func GetSecretsFromFiles(fs afero.Fs, rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()

	secrets := []string{
		"notification-url",
		"http-api-token",
	}
	for _, secret := range secrets {
		if err := getSecretFromFile(fs, flags, secret); err != nil {
			return fmt.Errorf("failed to get secret from flag %v: %w", secret, err)
		}
	}

	return nil
}

// getSecretFromFile updates a flag's value with file contents if it references a file.
// Slice flags take one value per non-empty line.
func getSecretFromFile(fs afero.Fs, flags *pflag.FlagSet, secret string) error {
	flag := flags.Lookup(secret)
	if flag == nil {
		return fmt.Errorf("%w: %q", errInvalidFlagName, secret)
	}

	if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
		oldValues := sliceValue.GetSlice()
		values := make([]string, 0, len(oldValues))

		for _, value := range oldValues {
			if value == "" || !isFilePath(fs, value) {
				values = append(values, value)

				continue
			}

			lines, err := readLines(fs, value)
			if err != nil {
				return err
			}

			values = append(values, lines...)
		}

		if err := sliceValue.Replace(values); err != nil {
			return fmt.Errorf("%w: %w", errReplaceSliceFailed, err)
		}

		return nil
	}

	value := flag.Value.String()
	if value != "" && isFilePath(fs, value) {
		content, err := afero.ReadFile(fs, value)
		if err != nil {
			return fmt.Errorf("%w: %w", errReadFileFailed, err)
		}

		if err := flags.Set(secret, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

func readLines(fs afero.Fs, path string) ([]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errOpenFileFailed, err)
	}

	var lines []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", errCloseFileFailed, err)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errReadFileFailed, err)
	}

	return lines, nil
}

// isFilePath determines if a string likely represents an existing file.
func isFilePath(fs afero.Fs, path string) bool {
	firstColon := strings.IndexRune(path, ':')
	if firstColon != 1 && firstColon != -1 {
		// A colon past the drive letter position means a URL.
		return false
	}

	_, err := fs.Stat(path)

	return !errors.Is(err, os.ErrNotExist)
}

// ProcessFlagAliases maps the --debug and --trace helpers onto --log-level.
// Trace wins when both are set.
func ProcessFlagAliases(flags *pflag.FlagSet) {
	if flagIsEnabled(flags, "debug") {
		if err := flags.Set("log-level", "debug"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}

	if flagIsEnabled(flags, "trace") {
		if err := flags.Set("log-level", "trace"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}
}

// SetupLogging configures the global logger based on log-related flags.
// Log output goes to stdout.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logLevel)

	return nil
}

func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// flagIsEnabled checks if a boolean flag is set to true.
func flagIsEnabled(flags *pflag.FlagSet, name string) bool {
	value, err := flags.GetBool(name)
	if err != nil {
		logrus.Fatalf("The flag %q is not defined", name)
	}

	return value
}
