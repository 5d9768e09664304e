package audiofx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mkuoppala/audiofx/internal/conf"
	"github.com/mkuoppala/audiofx/internal/logging"
	"github.com/mkuoppala/audiofx/internal/observability"
	"github.com/mkuoppala/audiofx/internal/observability/metrics"
)

// snapshotInterval is how often the monitor session logs a performance
// snapshot and refreshes the buffer gauges.
const snapshotInterval = 5 * time.Second

// RunMonitor builds the configured pipeline, attaches it to the default
// or configured duplex device and processes audio until ctx is canceled.
func RunMonitor(ctx context.Context, settings *conf.Settings) error {
	logger := logging.ForService("audiofx")

	var obs *observability.Metrics
	if settings.Metrics.Enabled {
		var err error
		obs, err = observability.NewMetrics()
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.Handler())
		server := &http.Server{
			Addr:              settings.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics endpoint listening", "addr", settings.Metrics.Listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	var audioFXMetrics *metrics.AudioFXMetrics
	if obs != nil {
		audioFXMetrics = obs.AudioFX
	}

	pipeline, err := BuildPipeline(settings, audioFXMetrics)
	if err != nil {
		return err
	}

	rt, err := NewRealTimeProcessor(ProcessorConfig{
		PollInterval: settings.Audio.PollInterval,
		Source:       "input",
	}, pipeline)
	if err != nil {
		return err
	}

	stream, err := OpenDuplexStream(settings.Audio.Source, settings.Audio.Sink, rt)
	if err != nil {
		return err
	}

	if err := rt.StartStreaming(stream); err != nil {
		return err
	}
	defer func() {
		if err := rt.StopStreaming(); err != nil {
			logger.Error("stop streaming failed", "error", err)
		}
	}()

	fmt.Printf("Processing on device: %s (%d Hz, %d samples, %d channels)\n",
		stream.DeviceName(), pipeline.SampleRate(), pipeline.BlockSize(), pipeline.Channels())

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case level := <-rt.Levels():
			if audioFXMetrics != nil {
				audioFXMetrics.UpdateInputLevel(pipeline.ID(), level.PeakDB, level.RMSDB)
			}
			if level.Clipping {
				logger.Warn("input clipping", "peak_db", level.PeakDB, "source", level.Source)
			}

		case <-ticker.C:
			snapshot := pipeline.Snapshot()
			logger.Info("performance snapshot",
				"avg_processing", snapshot.AverageProcessingTime,
				"max_processing", snapshot.MaxProcessingTime,
				"overloads", snapshot.OverloadCount,
				"active_chains", snapshot.ActiveChains,
				"latency_mode", snapshot.LatencyMode)

			if audioFXMetrics != nil {
				updateBufferGauges(pipeline, audioFXMetrics)
			}
		}
	}
}

func updateBufferGauges(pipeline *Pipeline, m *metrics.AudioFXMetrics) {
	in := pipeline.InputBuffer()
	out := pipeline.OutputBuffer()
	m.UpdateBufferUtilization(pipeline.ID(), "input",
		float64(in.Available())/float64(in.Capacity()))
	m.UpdateBufferUtilization(pipeline.ID(), "output",
		float64(out.Available())/float64(out.Capacity()))
}
