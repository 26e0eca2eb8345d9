// Package cmd contains the command-line interface definition and execution logic for tagreload.
//
// Key components:
//   - rootCmd: Root command that connects to Docker and reloads containers on tag events.
//   - RunConfig: Struct for configuring execution.
//
// Usage example:
//
//	cmd.Execute()
//
// The package wires the flags, container, actions, watch, metrics and notifications packages
// together, using Cobra for CLI parsing and logrus for logging.
package cmd
