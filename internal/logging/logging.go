// Package logging configures the shared logrus logger and provides Gin
// middleware for HTTP request logging and panic recovery.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/planline/planline/internal/config"
)

// Setup initializes the shared logger. With an empty logging config, output
// goes to stderr in text format. When cfg.Logging.File is set, output goes to
// a size-rotated file instead.
func Setup(cfg *config.Config) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(log.InfoLevel)
	if cfg == nil {
		return
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.Logging.File != "" {
		log.SetOutput(rotatingWriter(cfg.Logging))
	}
}

func rotatingWriter(lc config.LoggingConfig) io.Writer {
	maxSize := lc.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 20
	}
	maxBackups := lc.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}
	return &lumberjack.Logger{
		Filename:   lc.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}
}

// init keeps early log lines readable before Setup runs.
func init() {
	log.SetOutput(os.Stderr)
}
