package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures the global logger for the given mode and level
func Init(mode, level string) {
	Log.SetOutput(os.Stdout)

	if mode == "prod" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		Log.WithField("level", level).Warn("unknown log level, using info")
	}
	Log.SetLevel(lvl)
}

// WithRequest returns an entry tagged with a request id
func WithRequest(requestID string) *logrus.Entry {
	return Log.WithField("request_id", requestID)
}
