// Package observability wires the prometheus registry and the metric
// collections exposed by audiofx.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkuoppala/audiofx/internal/observability/metrics"
)

// Metrics bundles the registry with the per-domain metric collections.
type Metrics struct {
	registry *prometheus.Registry

	AudioFX *metrics.AudioFXMetrics
}

// NewMetrics creates a registry with the standard Go collectors plus the
// audiofx collection.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	audioFX, err := metrics.NewAudioFXMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registry: registry,
		AudioFX:  audioFX,
	}, nil
}

// Handler returns an http.Handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
