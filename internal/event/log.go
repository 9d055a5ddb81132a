// Package event holds the shared logger.
package event

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the logger used by all internal packages.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel parses a level name such as "debug" or "warn".
// Unknown names keep the current level and return false.
func SetLevel(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}

	level, err := logrus.ParseLevel(name)
	if err != nil {
		return false
	}

	Log.SetLevel(level)
	return true
}
