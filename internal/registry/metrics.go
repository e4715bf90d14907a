package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK      = "ok"
	resultDropped = "dropped"
	resultClosed  = "closed"
)

var (
	mSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "registry_subscriptions",
		Help: "Connection handles currently joined.",
	})
	mDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_deliveries_total",
		Help: "Per-handle delivery attempts by result.",
	}, []string{"result"})
	mBusPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_bus_publish_errors_total",
		Help: "Failed publishes to the shared bus.",
	})
)
