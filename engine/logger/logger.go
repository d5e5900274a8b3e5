package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "Orbital",
			Level:           log.InfoLevel,
		})
		singleton.SetCallerOffset(1)
	})
	return singleton
}

// SetLevel changes the minimum level that is printed. Accepts debug, info, warn, error.
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a sub-logger that prefixes every line with the given key/value pairs.
// Sub-loggers report their own call site, so no caller offset is applied.
func With(keyvals ...any) *log.Logger {
	l := get().With(keyvals...)
	l.SetCallerOffset(0)
	return l
}

func Debugf(msg string, args ...any) {
	get().Debugf(msg, args...)
}

func Infof(msg string, args ...any) {
	get().Infof(msg, args...)
}

func Warnf(msg string, args ...any) {
	get().Warnf(msg, args...)
}

func Errorf(msg string, args ...any) {
	get().Errorf(msg, args...)
}
