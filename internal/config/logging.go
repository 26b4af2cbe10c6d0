package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus
// logger. An unknown level falls back to info.
func ConfigureLogging(c Config) *log.Logger {
	logger := log.StandardLogger()
	logger.SetOutput(os.Stdout)
	if c.LogFormat == "json" || (InLambda() && c.LogFormat != "text") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
