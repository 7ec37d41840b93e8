package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It starts as logrus' standard logger so
// packages can log before InitLogger runs.
var Log = logrus.StandardLogger()

// InitLogger configures JSON output on stdout at the given level. An unknown
// level falls back to info and is reported.
func InitLogger(level string) {
	Log = logrus.StandardLogger()

	// Output to stdout instead of the default stderr
	Log.SetOutput(os.Stdout)
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.SetLevel(logrus.InfoLevel)
		Log.WithField("level", level).Warn("Unknown log level, using info")
		return
	}
	Log.SetLevel(lvl)
}
