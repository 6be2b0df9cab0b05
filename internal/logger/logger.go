// Package logger provides structured logging helpers.
package logger

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

type Logger struct {
	out   io.Writer
	err   io.Writer
	quiet bool
	debug bool
	trace zerolog.Logger
}

// New builds a Logger. Debug records go to the error stream so that stdout
// stays machine readable when commands print JSON.
func New(out io.Writer, err io.Writer, quiet bool, debug bool) *Logger {
	level := zerolog.Disabled
	if debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:          err,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}

	return &Logger{
		out:   out,
		err:   err,
		quiet: quiet,
		debug: debug,
		trace: zerolog.New(console).Level(level),
	}
}

func (logger *Logger) Log(message string, forceShow bool) {
	if logger.quiet && !forceShow && !logger.debug {
		return
	}
	if _, err := fmt.Fprintln(logger.out, message); err != nil {
		return
	}
}

func (logger *Logger) Debug(message string) {
	logger.trace.Debug().Msg(message)
}

func (logger *Logger) Debugf(format string, args ...interface{}) {
	logger.trace.Debug().Msgf(format, args...)
}

// DebugFields emits a debug record carrying structured key/value pairs.
func (logger *Logger) DebugFields(message string, fields map[string]interface{}) {
	logger.trace.Debug().Fields(fields).Msg(message)
}

func (logger *Logger) Error(message string) {
	if _, err := fmt.Fprintln(logger.err, message); err != nil {
		return
	}
}

func (logger *Logger) Errorf(format string, args ...any) {
	if _, err := fmt.Fprintf(logger.err, format, args...); err != nil {
		return
	}
}

func (logger *Logger) DebugEnabled() bool {
	return logger.debug
}
