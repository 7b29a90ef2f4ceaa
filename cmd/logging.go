package cmd

import (
	"os"

	"lotto/config"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and switches to JSON output in production
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, falling back to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
