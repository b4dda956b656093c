// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init is called (text output, info level).
var Log = logrus.New()

// Init configures the global logger: JSON output in production, text elsewhere.
// An unknown level falls back to info.
func Init(level string, production bool) {
	Log.Out = os.Stdout

	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("Invalid log level '%s', using info", level)
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}
