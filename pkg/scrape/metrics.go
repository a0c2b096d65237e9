package scrape

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	polls         prometheus.Counter
	failures      *prometheus.CounterVec
	staleBodies   prometheus.Counter
	fetchDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) (*metrics, error) {
	m := &metrics{
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "crowd_dashboard",
			Name:        "polls_total",
			Help:        "Total number of poll ticks fired",
			ConstLabels: constLabels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "crowd_dashboard",
			Name:        "poll_failures_total",
			Help:        "Total number of poll ticks aborted, by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		staleBodies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "crowd_dashboard",
			Name:        "stale_bodies_total",
			Help:        "Total number of responses dropped because a newer tick had already rendered",
			ConstLabels: constLabels,
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "crowd_dashboard",
			Name:        "fetch_duration_seconds",
			Help:        "Duration of crowd data fetches in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms ~ 2s
		}),
	}
	for _, c := range []prometheus.Collector{m.polls, m.failures, m.staleBodies, m.fetchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
