package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the structured JSON logger. The level comes from the
// LOG_LEVEL environment variable and defaults to info; it is read directly
// from the environment because Init runs before the config layer loads.
func Init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(Level(os.Getenv("LOG_LEVEL")))
	logrus.Info("Logger initialized")
}

// Level parses a logrus level name, falling back to info on empty or
// unknown values.
func Level(name string) logrus.Level {
	if name == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
