// Package metrics provides audiofx metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AudioFXMetrics contains Prometheus metrics for the effects pipeline
type AudioFXMetrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	blocksProcessed    *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	overloads          *prometheus.CounterVec
	activeChains       *prometheus.GaugeVec

	// Buffer metrics
	bufferUtilization *prometheus.GaugeVec
	bufferOverflows   *prometheus.CounterVec

	// Level metrics
	inputLevelDB *prometheus.GaugeVec

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewAudioFXMetrics creates and registers new audiofx metrics
func NewAudioFXMetrics(registry *prometheus.Registry) (*AudioFXMetrics, error) {
	m := &AudioFXMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AudioFXMetrics) initMetrics() {
	m.blocksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofx_blocks_processed_total",
			Help: "Total number of audio blocks processed by the pipeline",
		},
		[]string{"pipeline_id"},
	)

	m.processingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audiofx_processing_duration_seconds",
			Help:    "Time taken to process one audio block",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100us to ~400ms
		},
		[]string{"pipeline_id"},
	)

	m.overloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofx_overloads_total",
			Help: "Total number of blocks whose processing time exceeded the latency budget",
		},
		[]string{"pipeline_id"},
	)

	m.activeChains = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audiofx_active_chains",
			Help: "Number of enabled processing chains",
		},
		[]string{"pipeline_id"},
	)

	m.bufferUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audiofx_buffer_utilization_ratio",
			Help: "Fill ratio of a circular sample buffer",
		},
		[]string{"pipeline_id", "buffer"},
	)

	m.bufferOverflows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audiofx_buffer_overflows_total",
			Help: "Total number of buffer writes that discarded unread frames",
		},
		[]string{"pipeline_id", "buffer"},
	)

	m.inputLevelDB = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audiofx_input_level_db",
			Help: "Input level of the monitored signal in dBFS",
		},
		[]string{"pipeline_id", "kind"},
	)

	m.collectors = []prometheus.Collector{
		m.blocksProcessed,
		m.processingDuration,
		m.overloads,
		m.activeChains,
		m.bufferUtilization,
		m.bufferOverflows,
		m.inputLevelDB,
	}
}

// Describe implements prometheus.Collector
func (m *AudioFXMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *AudioFXMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordBlockProcessed records one processed block and its duration.
func (m *AudioFXMetrics) RecordBlockProcessed(pipelineID string, seconds float64) {
	m.blocksProcessed.WithLabelValues(pipelineID).Inc()
	if seconds > 0 {
		m.processingDuration.WithLabelValues(pipelineID).Observe(seconds)
	}
}

// RecordOverload records a block that exceeded its latency budget.
func (m *AudioFXMetrics) RecordOverload(pipelineID string) {
	m.overloads.WithLabelValues(pipelineID).Inc()
}

// UpdateActiveChains updates the enabled chain count.
func (m *AudioFXMetrics) UpdateActiveChains(pipelineID string, count int) {
	m.activeChains.WithLabelValues(pipelineID).Set(float64(count))
}

// UpdateBufferUtilization updates the fill ratio of a named buffer.
func (m *AudioFXMetrics) UpdateBufferUtilization(pipelineID, buffer string, ratio float64) {
	m.bufferUtilization.WithLabelValues(pipelineID, buffer).Set(ratio)
}

// RecordBufferOverflow records a write that discarded unread frames.
func (m *AudioFXMetrics) RecordBufferOverflow(pipelineID, buffer string) {
	m.bufferOverflows.WithLabelValues(pipelineID, buffer).Inc()
}

// UpdateInputLevel updates the input peak and RMS level gauges.
func (m *AudioFXMetrics) UpdateInputLevel(pipelineID string, peakDB, rmsDB float64) {
	m.inputLevelDB.WithLabelValues(pipelineID, "peak").Set(peakDB)
	m.inputLevelDB.WithLabelValues(pipelineID, "rms").Set(rmsDB)
}
