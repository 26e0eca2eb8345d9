// Package util provides formatting helpers shared by tagreload's packages.
//
// Key components:
//   - FormatDuration: Renders durations for log messages.
//   - NormalizeContainerName: Strips the daemon's leading slash from names.
package util
