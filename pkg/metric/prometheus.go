package metric

import (
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusMetrics interface {
	Metrics
	Handler() http.Handler
}

// collectorSet registers vectors on first use: the label names seen first become
// the fixed label set of the metric.
type collectorSet struct {
	registry   *prometheus.Registry
	mutex      sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

type prometheusMetrics struct {
	set    *collectorSet
	labels Labels
}

func NewPrometheusMetrics() PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return prometheusMetrics{
		set: &collectorSet{
			registry:   registry,
			counters:   make(map[string]*prometheus.CounterVec),
			histograms: make(map[string]*prometheus.HistogramVec),
		},
		labels: Labels{},
	}
}

func (m prometheusMetrics) With(labels Labels) Metrics {
	merged := make(Labels, len(m.labels)+len(labels))
	maps.Copy(merged, m.labels)
	maps.Copy(merged, labels)
	return prometheusMetrics{set: m.set, labels: merged}
}

func (m prometheusMetrics) Increment(name string) {
	counter, err := m.set.counter(name, m.labelNames()).GetMetricWith(prometheus.Labels(m.labels))
	if err != nil {
		return
	}

	counter.Inc()
}

func (m prometheusMetrics) Duration(name string, duration time.Duration) {
	histogram, err := m.set.histogram(name, m.labelNames()).GetMetricWith(prometheus.Labels(m.labels))
	if err != nil {
		return
	}

	histogram.Observe(duration.Seconds())
}

func (m prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.set.registry, promhttp.HandlerOpts{})
}

func (m prometheusMetrics) labelNames() []string {
	return slices.Sorted(maps.Keys(m.labels))
}

func (s *collectorSet) counter(name string, labelNames []string) *prometheus.CounterVec {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if counter, ok := s.counters[name]; ok {
		return counter
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelNames)
	s.registry.MustRegister(counter)
	s.counters[name] = counter
	return counter
}

func (s *collectorSet) histogram(name string, labelNames []string) *prometheus.HistogramVec {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if histogram, ok := s.histograms[name]; ok {
		return histogram
	}

	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Buckets: prometheus.DefBuckets,
	}, labelNames)
	s.registry.MustRegister(histogram)
	s.histograms[name] = histogram
	return histogram
}
