// Package logger provides prefixed charmbracelet/log loggers for the search
// engine components.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger that inherits the global log level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetVerbose toggles debug logging process-wide.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(log.InfoLevel)
}
