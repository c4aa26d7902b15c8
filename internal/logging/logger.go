package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields

// NewLogger returns a JSON logger tagged with the service name. LOG_LEVEL selects the level.
func NewLogger(service string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(levelFromEnv())
	logger.AddHook(serviceHook{service: service})
	return logger
}

func levelFromEnv() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}
