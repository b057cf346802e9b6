// Package logger builds the process-wide logrus logger from config.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"engagerag/internal/config"
)

// New returns a logger writing to stderr at the configured level and format.
// An unknown level falls back to info.
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// Discard returns a logger that drops everything. Used by tests and the REPL.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
