// Package logger configures the process-wide logging backend and hands out
// per-subsystem loggers. Subsystems name themselves with a bracketed module
// tag, e.g. logger.NewLogger("[evm]").
package logger

import (
	"os"

	"github.com/op/go-logging"
)

const defaultFormat = "%{color}%{time:15:04:05.000} %{module} %{level:.4s}%{color:reset} %{message}"

var leveled logging.LeveledBackend

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backend.Color = isTerminal(os.Stderr.Fd())
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(defaultFormat))
	leveled = logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
}

// NewLogger returns the leveled logger registered for the given module tag.
func NewLogger(module string) *logging.Logger {
	return logging.MustGetLogger(module)
}

// SetLevel adjusts the log level of a single module, or of all modules when
// module is empty.
func SetLevel(level logging.Level, module string) {
	leveled.SetLevel(level, module)
}
