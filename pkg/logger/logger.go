package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

func New() *Logger {
	return NewWithWriter(os.Stdout, os.Stderr)
}

// NewWithWriter routes info/warn lines to out and error lines to errOut.
func NewWithWriter(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		info:  log.New(out, "INFO: ", flags),
		warn:  log.New(out, "WARN: ", flags),
		error: log.New(errOut, "ERROR: ", flags),
	}
}

// callDepth skips the wrapper frame so Lshortfile names the caller.
const callDepth = 2

func (l *Logger) Info(format string, v ...interface{}) {
	_ = l.info.Output(callDepth, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(format string, v ...interface{}) {
	_ = l.warn.Output(callDepth, fmt.Sprintf(format, v...))
}

func (l *Logger) Error(format string, v ...interface{}) {
	_ = l.error.Output(callDepth, fmt.Sprintf(format, v...))
}
