// Package obslog centralizes the structured logger used across the
// manager and event-handler packages. It mirrors the small wrapper the
// storage layer builds over logrus: one process-wide logger, callers
// attach a "component" field instead of instantiating their own.
package obslog

import "github.com/sirupsen/logrus"

var base = logrus.StandardLogger()

// For returns a logger entry tagged with the given component name.
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel adjusts the process-wide log level. Integrators embedding
// this module in firmware call this once at startup; the core never
// changes its own verbosity.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}
