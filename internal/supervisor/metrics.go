package supervisor

import "github.com/prometheus/client_golang/prometheus"

var (
	startsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "server",
		Name:      "starts_total",
		Help:      "Number of llama-server child processes started.",
	})

	stopsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "server",
		Name:      "stops_total",
		Help:      "Number of stop requests accepted.",
	})

	stopTimeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "server",
		Name:      "stop_timeouts_total",
		Help:      "Number of graceful stops that timed out and were escalated to a kill.",
	})

	crashesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "server",
		Name:      "crashes_total",
		Help:      "Number of child exits classified as crashes.",
	})

	logLinesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "server",
		Name:      "log_lines_total",
		Help:      "Number of child output lines captured.",
	})

	upGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "llamagui",
		Subsystem: "server",
		Name:      "up",
		Help:      "1 while a llama-server child is running, 0 otherwise.",
	})

	eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Number of events published to the broker, by event type.",
	}, []string{"type"})

	eventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "llamagui",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Number of events dropped because a subscriber buffer was full.",
	})
)

func init() {
	prometheus.MustRegister(
		startsTotal,
		stopsTotal,
		stopTimeoutsTotal,
		crashesTotal,
		logLinesTotal,
		upGauge,
		eventsPublishedTotal,
		eventsDroppedTotal,
	)
}
