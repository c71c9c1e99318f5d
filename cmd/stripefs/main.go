// Command stripefs is a small command-line front end that drives an OSD
// store rooted at a local directory through the stripe translator, for
// manual exercise and integration testing of write/read/status/rebuild
// without a real filesystem client attached.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := Execute(); err != nil {
		logrus.WithError(err).Error("stripefs failed")
		os.Exit(1)
	}
}
