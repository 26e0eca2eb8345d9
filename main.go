package main

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/tagreload/cmd"
)

// init configures the initial logging level for tagreload.
//
// It sets logrus to InfoLevel by default so reload notices are visible
// unless overridden by --debug, --trace or --log-level in cmd.
func init() {
	logrus.SetLevel(logrus.InfoLevel)
}

// main serves as the entry point for tagreload.
func main() {
	cmd.Execute()
}
