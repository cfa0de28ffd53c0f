// Package clog wraps logrus the way open-policy-agent/opa's log package
// does: a small Logger interface plus a package-level default instance, so
// every pass logs through structured fields instead of fmt.Printf.
package clog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields so callers never import logrus directly.
type Fields = logrus.Fields

// Logger is the subset of logrus's API the compiler passes rely on.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	WithField(key string, value interface{}) *logrus.Entry
	WithFields(Fields) *logrus.Entry

	SetLevel(level string) error
	SetOutput(io.Writer)
}

type logger struct {
	entry *logrus.Entry
}

// New returns a standalone logger; cmd/zenac builds one per invocation so
// tests can run compiles without touching the package-level Default.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	return &logger{entry: logrus.NewEntry(l)}
}

func (l *logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.entry.WithField(key, value)
}

func (l *logger) WithFields(f Fields) *logrus.Entry { return l.entry.WithFields(f) }

func (l *logger) SetLevel(level string) error {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(lv)
	return nil
}

func (l *logger) SetOutput(w io.Writer) { l.entry.Logger.SetOutput(w) }

// Default is the package-level logger used by passes that don't carry their
// own *Logger (mirrors opa's package-level default).
var Default Logger = New()

// Phase logs a single compile phase's completion with its duration and the
// module it ran against, the structured fields every pass attaches.
func Phase(log Logger, pass, module string, durationMS int64) {
	log.WithFields(Fields{"pass": pass, "module": module, "durationMS": durationMS}).Debugf("phase complete")
}
