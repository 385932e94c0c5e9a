// Package logx supplies the small logging seam the fabrication core
// uses for geometry-degeneracy warnings (spec class 1 errors): a
// minimal interface so embedders can redirect warnings without this
// module importing a GUI or structured-logging framework, defaulting
// to the standard library's log package.
package logx

import "log"

// Logger receives warnings about skipped geometry: invalid paths,
// zero-size pads, and similar non-fatal data problems.
type Logger interface {
	Printf(format string, args ...interface{})
}

// stdLogger adapts the standard log package to Logger.
type stdLogger struct{}

func (stdLogger) Printf(format string, args ...interface{}) { log.Printf(format, args...) }

// Default is the Logger used when a caller doesn't supply one.
var Default Logger = stdLogger{}
