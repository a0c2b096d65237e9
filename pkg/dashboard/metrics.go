package dashboard

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"crowd-dashboard/pkg/model"
)

// MetricsSurface exports the latest count as a Prometheus gauge.
type MetricsSurface struct {
	peopleCount prometheus.Gauge
	samples     prometheus.Gauge
}

func NewMetricsSurface(reg prometheus.Registerer, labels model.Labels) (*MetricsSurface, error) {
	constLabels := prometheus.Labels(labels.Map())
	m := &MetricsSurface{
		peopleCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "crowd_dashboard",
			Name:        "people_count",
			Help:        "Latest people count reported by the crowd endpoint",
			ConstLabels: constLabels,
		}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "crowd_dashboard",
			Name:        "samples",
			Help:        "Number of samples in the last rendered chart",
			ConstLabels: constLabels,
		}),
	}
	for _, c := range []prometheus.Collector{m.peopleCount, m.samples} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MetricsSurface) Name() string {
	return "metrics"
}

func (m *MetricsSurface) Render(_ context.Context, v model.View) error {
	m.peopleCount.Set(float64(v.Latest))
	m.samples.Set(float64(v.Chart.Len()))
	return nil
}
