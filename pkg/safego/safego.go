// Package safego launches background goroutines that cannot crash the process.
package safego

import (
	"github.com/sirupsen/logrus"
)

// Go runs fn in a new goroutine, recovering and logging any panic.
func Go(logger *logrus.Entry, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger == nil {
					logger = logrus.NewEntry(logrus.StandardLogger())
				}
				logger.WithFields(logrus.Fields{
					"goroutine": name,
					"panic":     r,
				}).Error("recovered panic in background goroutine")
			}
		}()
		fn()
	}()
}
