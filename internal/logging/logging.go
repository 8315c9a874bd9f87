// Package logging provides wvrun's logging built on charmbracelet/log.
//
// All log output goes to stderr; stdout is reserved for the report
// stream. Setup must be called before New so child loggers inherit the
// configured level and formatter.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Setup configures the global logging defaults. Call once during CLI
// initialization. debug lowers the level to Debug; jsonFormat switches to
// NDJSON output for CI log aggregation.
func Setup(debug, jsonFormat bool) {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix, inheriting the
// global settings in effect at creation time.
func New(component string) *log.Logger {
	logger := log.Default()
	if component != "" {
		logger = logger.WithPrefix(component)
	}
	return logger
}
