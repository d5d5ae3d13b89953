// Package log provides file-backed structured logging on top of logrus.
// Nothing is emitted unless logging is enabled in the configuration.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vidplay/vidplay/filesystem"
	"github.com/vidplay/vidplay/key"
	"github.com/vidplay/vidplay/where"
)

var enabled bool

// Setup opens today's log file and applies the formatter and level from the configuration.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		logrus.SetOutput(io.Discard)
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// SetDebug raises the level to debug without touching the output.
func SetDebug(on bool) {
	if on && logrus.GetLevel() < logrus.DebugLevel {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// Fields is an alias so callers don't import logrus directly.
type Fields = logrus.Fields

// Entry is a logger pre-tagged with fields.
type Entry struct {
	e *logrus.Entry
}

// WithFields returns a tagged logger, typically one per component.
func WithFields(f Fields) Entry {
	return Entry{e: logrus.WithFields(f)}
}

// Component is shorthand for WithFields(Fields{"component": name}).
func Component(name string) Entry {
	return WithFields(Fields{"component": name})
}

func (l Entry) With(k string, v any) Entry {
	return Entry{e: l.e.WithField(k, v)}
}

func (l Entry) Errorf(format string, args ...any) {
	if enabled {
		l.e.Errorf(format, args...)
	}
}

func (l Entry) Warnf(format string, args ...any) {
	if enabled {
		l.e.Warnf(format, args...)
	}
}

func (l Entry) Infof(format string, args ...any) {
	if enabled {
		l.e.Infof(format, args...)
	}
}

func (l Entry) Debugf(format string, args ...any) {
	if enabled {
		l.e.Debugf(format, args...)
	}
}

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
