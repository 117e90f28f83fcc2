package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// L is the shared structured logger. Level comes from LOG_LEVEL; output is
// JSON so the lines are queryable in cloud logging.
var L *logrus.Logger

func init() {
	L = logrus.New()
	L.SetOutput(os.Stdout)
	L.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		L.SetLevel(logrus.DebugLevel)
	case "warn":
		L.SetLevel(logrus.WarnLevel)
	case "error":
		L.SetLevel(logrus.ErrorLevel)
	default:
		L.SetLevel(logrus.InfoLevel)
	}
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return L.WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return L.WithError(err)
}
