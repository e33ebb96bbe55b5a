package logging

import (
	"github.com/mborders/logmatic"
)

var l *logmatic.Logger

func init() {
	l = logmatic.NewLogger()
	l.SetLevel(logmatic.INFO)
	l.ExitOnFatal = true
}

// Debug - Log at debug level
func Debug(format string, a ...interface{}) {
	l.Debug(format, a...)
}

// Info - Log at info level
func Info(format string, a ...interface{}) {
	l.Info(format, a...)
}

// Warn - Log at warning level
func Warn(format string, a ...interface{}) {
	l.Warn(format, a...)
}

// Error - Log at error level
func Error(format string, a ...interface{}) {
	l.Error(format, a...)
}

// Fatal - Log and exit
func Fatal(format string, a ...interface{}) {
	l.Fatal(format, a...)
}
