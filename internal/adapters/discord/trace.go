package discord

import (
	"time"

	"github.com/sirupsen/logrus"
)

// step mide una llamada REST; solo se ve con LOG_LEVEL=debug.
func step(label string) func() {
	start := time.Now()
	return func() {
		logrus.WithFields(logrus.Fields{"step": label, "took": time.Since(start)}).Debug("trace")
	}
}
