package listener

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentry_alerts_received_total",
		Help: "Total alert messages received from the bus.",
	})

	alertsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentry_alerts_dropped_total",
		Help: "Total alert messages dropped, by pipeline stage.",
	}, []string{"stage"})

	alertsLogged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentry_alerts_logged_total",
		Help: "Total alerts appended to the history log.",
	})
)
