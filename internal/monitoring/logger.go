// Package monitoring holds the process-wide diagnostic logger used by the
// library packages, so tools keep their output and tests can mute it.
package monitoring

import "log"

// Logf is the diagnostic logger for library packages. Defaults to
// log.Printf; replace with SetLogger.
var Logf = log.Printf

// SetLogger swaps the package logger. A nil argument installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
