// Package container provides the Docker Engine backed implementation of types.Client.
// It wraps the Docker API client for the calls tagreload needs to reload containers
// on image tag events: list, inspect, force remove, create, start and event streaming.
//
// Key components:
//   - NewClient: Connects to the local socket or a remote TCP endpoint, with optional TLS.
//   - ClientOptions: Connection settings derived from flags and DOCKER_* environment variables.
//   - newTLSConfig: Builds client TLS from a certificate directory, optionally without hostname checks.
//   - newCreateConfig: Translates a types.RecreateSpec into Docker create configuration.
//
// Usage example:
//
//	cli, err := container.NewClient(ctx, container.ClientOptions{Host: os.Getenv("DOCKER_HOST")})
//	if err != nil {
//	    logrus.WithError(err).Fatal("Failed to connect to Docker")
//	}
//	containers, _ := cli.ListContainers(ctx)
//	for _, c := range containers {
//	    logrus.WithField("container", c.Name()).Info("Running")
//	}
//
// The package integrates with docker/docker client libraries and docker/go-connections,
// using logrus for logging.
package container
