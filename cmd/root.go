package cmd

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/tagreload/internal/actions"
	"github.com/nicholas-fedor/tagreload/internal/api"
	"github.com/nicholas-fedor/tagreload/internal/flags"
	"github.com/nicholas-fedor/tagreload/internal/logging"
	"github.com/nicholas-fedor/tagreload/internal/meta"
	"github.com/nicholas-fedor/tagreload/internal/watch"
	"github.com/nicholas-fedor/tagreload/pkg/container"
	"github.com/nicholas-fedor/tagreload/pkg/metrics"
	"github.com/nicholas-fedor/tagreload/pkg/notifications"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// client is the Docker client used for every runtime call, initialized in preRun.
var client types.Client

// notifier sends reload notifications; nil when no notification URL is configured.
var notifier types.Notifier

// newClient creates the Docker client. Tests replace it.
var newClient = container.NewClient

// rootCmd is the single tagreload command.
var rootCmd = NewRootCommand()

// RunConfig encapsulates the configuration parameters for the runMain function.
type RunConfig struct {
	// Command is the executed command, providing access to parsed flags.
	Command *cobra.Command
	// Client performs the runtime calls.
	Client types.Client
	// Notifier receives one report per reloaded container; may be nil.
	Notifier types.Notifier
	// PreserveName gives replacements the old container's name, set via --preserve-name.
	PreserveName bool
	// ReconnectMaxElapsed bounds event stream reconnects; zero retries forever.
	ReconnectMaxElapsed time.Duration
	// EnableMetricsAPI enables the HTTP metrics endpoint, set via --http-api-metrics.
	EnableMetricsAPI bool
	// APIToken is the bearer token for the HTTP API, set via --http-api-token.
	APIToken string
	// APIHost is the host to bind the HTTP API to, set via --http-api-host.
	APIHost string
	// APIPort is the port for the HTTP API, set via --http-api-port.
	APIPort string
}

// NewRootCommand creates and configures the root command for the tagreload CLI.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tagreload",
		Short: "Reloads running Docker containers when their image is retagged",
		Long: "\ntagreload watches the Docker event stream for image tag events and recreates every running" +
			"\ncontainer based on the retagged image, keeping its ports, volumes, environment and extra hosts.",
		Run:    run,
		PreRun: preRun,
		Args:   cobra.NoArgs,
	}
}

func init() {
	flags.SetDefaults()
	flags.RegisterDockerFlags(rootCmd)
	flags.RegisterSystemFlags(rootCmd)
	flags.RegisterNotificationFlags(rootCmd)
}

// Execute runs the root command and terminates the program on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Failed to execute root command")
	}
}

// preRun configures logging, resolves secrets and connects to the Docker daemon.
// Any failure here is fatal.
func preRun(cmd *cobra.Command, _ []string) {
	flagsSet := cmd.PersistentFlags()
	flags.ProcessFlagAliases(flagsSet)

	if err := flags.SetupLogging(flagsSet); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	if err := flags.GetSecretsFromFiles(afero.NewOsFs(), cmd); err != nil {
		logrus.WithError(err).Fatal("Failed to read secrets")
	}

	opts, err := readClientOptions(cmd)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read Docker flags")
	}

	client, err = newClient(context.Background(), opts)
	if err != nil {
		logrus.WithError(err).
			WithField("docker_host", opts.Host).
			Fatal("Failed to connect to the Docker daemon")
	}

	notifier, err = notifications.NewNotifier(cmd)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize notifications")
	}
}

// readClientOptions collects the Docker connection flags.
func readClientOptions(cmd *cobra.Command) (container.ClientOptions, error) {
	flagsSet := cmd.PersistentFlags()

	var (
		opts container.ClientOptions
		err  error
	)

	if opts.Host, err = flagsSet.GetString("host"); err != nil {
		return opts, err
	}

	if opts.TLSVerify, err = flagsSet.GetBool("tlsverify"); err != nil {
		return opts, err
	}

	if opts.CertPath, err = flagsSet.GetString("cert-path"); err != nil {
		return opts, err
	}

	if opts.APIVersion, err = flagsSet.GetString("api-version"); err != nil {
		return opts, err
	}

	if opts.SkipHostnameCheck, err = flagsSet.GetBool("tls-skip-hostname-check"); err != nil {
		return opts, err
	}

	return opts, nil
}

// run builds the run configuration from flags and exits with runMain's status code.
func run(c *cobra.Command, _ []string) {
	flagsSet := c.PersistentFlags()

	preserveName, _ := flagsSet.GetBool("preserve-name")
	maxElapsed, _ := flagsSet.GetDuration("reconnect-max-elapsed")
	enableMetricsAPI, _ := flagsSet.GetBool("http-api-metrics")
	apiToken, _ := flagsSet.GetString("http-api-token")
	apiHost, _ := flagsSet.GetString("http-api-host")

	if apiHost != "" && net.ParseIP(apiHost) == nil {
		logrus.Fatalf(
			"invalid http-api-host '%s': must be empty or a valid IP address (IPv4 or IPv6)",
			apiHost,
		)
	}

	if maxElapsed < 0 {
		logrus.Fatal("Please specify a positive value for reconnect-max-elapsed.")
	}

	apiPort, _ := flagsSet.GetString("http-api-port")
	if apiPort == "" {
		apiPort = "8080"
	}

	cfg := RunConfig{
		Command:             c,
		Client:              client,
		Notifier:            notifier,
		PreserveName:        preserveName,
		ReconnectMaxElapsed: maxElapsed,
		EnableMetricsAPI:    enableMetricsAPI,
		APIToken:            apiToken,
		APIHost:             apiHost,
		APIPort:             apiPort,
	}

	if exitCode := runMain(cfg); exitCode != 0 {
		logrus.WithField("exit_code", exitCode).Debug("Exiting with non-zero status")
		os.Exit(exitCode)
	}
}

// runMain writes the startup message, starts the optional HTTP API and blocks on the
// event loop until interrupted.
//
// Returns:
//   - int: 0 after an interrupt, 1 if the API failed to start or the event stream was lost for good.
func runMain(cfg RunConfig) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.WriteStartupMessage(cfg.Command, cfg.Client, cfg.Notifier, meta.Version)

	if err := api.SetupAndStartAPI(ctx, cfg.APIHost, cfg.APIPort, cfg.APIToken, cfg.EnableMetricsAPI); err != nil {
		return 1
	}

	if err := watch.RunReloadsOnEvents(ctx, newWatcher(cfg), cfg.Notifier); err != nil {
		logrus.WithError(err).Error("Stopped watching for tag events")

		return 1
	}

	return 0
}

// newWatcher builds the event loop that reloads containers and records metrics for every tag event.
func newWatcher(cfg RunConfig) *watch.Watcher {
	opts := actions.Options{PreserveName: cfg.PreserveName}

	handler := func(ctx context.Context, event types.TagEvent) error {
		metric, err := actions.RunReloadWithNotifications(ctx, cfg.Client, cfg.Notifier, event, opts)
		metrics.Default().Register(metric)

		return err
	}

	return watch.New(
		cfg.Client,
		handler,
		watch.WithReconnectLimit(cfg.ReconnectMaxElapsed),
		watch.WithReconnectHook(metrics.Default().RegisterReconnect),
	)
}
