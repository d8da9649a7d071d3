// Package enginelog is a thin logging facade threaded through Table and
// Engine via constructor options, rather than a process-wide logger (the
// original implementation's module-level logging.Logger).
package enginelog

import "github.com/sirupsen/logrus"

// Logger is the capability Table and Engine log through. *logrus.Logger
// satisfies it directly.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// Discard is a Logger that drops everything; the default when no logger
// is supplied.
type Discard struct{}

func (Discard) Debugf(string, ...interface{}) {}

// FromLogrus wraps l so it satisfies Logger (logrus.Logger already does;
// this is a convenience constructor for callers that prefer an explicit
// adapter name at the call site).
func FromLogrus(l *logrus.Logger) Logger { return l }
