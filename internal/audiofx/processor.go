package audiofx

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkuoppala/audiofx/internal/errors"
	"github.com/mkuoppala/audiofx/internal/logging"
)

// levelChannelSize bounds the telemetry channel; a slow consumer drops
// updates instead of stalling the monitor loop.
const levelChannelSize = 16

// ProcessorConfig describes the stream format and processing cadence of a
// RealTimeProcessor.
type ProcessorConfig struct {
	SampleRate   int
	BlockSize    int
	Channels     int
	PollInterval time.Duration
	Source       string
}

// RealTimeProcessor bridges the device callbacks and the pipeline. The
// input callback only copies PCM into the input buffer; a monitor
// goroutine drains full blocks, runs them through the pipeline and pushes
// the result into the output buffer, from which the output callback fills
// the device.
type RealTimeProcessor struct {
	cfg      ProcessorConfig
	pipeline *Pipeline

	// callback-side scratch, touched only from the device callbacks
	inSamples  []float32
	outSamples []float32
	outBytes   []byte

	// monitor-side scratch
	block []float32

	levelChan chan LevelData

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	stream AudioStream

	logger *slog.Logger
}

// AudioStream abstracts the duplex device so the processor lifecycle can
// be tested without hardware.
type AudioStream interface {
	Start() error
	Stop() error
	Close()
}

// NewRealTimeProcessor wires a processor to an existing pipeline. The
// pipeline format wins when the config disagrees with it.
func NewRealTimeProcessor(cfg ProcessorConfig, pipeline *Pipeline) (*RealTimeProcessor, error) {
	if pipeline == nil {
		return nil, errors.Newf("pipeline cannot be nil").
			Component("audiofx").
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Millisecond
	}
	if cfg.Source == "" {
		cfg.Source = "input"
	}
	cfg.SampleRate = pipeline.SampleRate()
	cfg.BlockSize = pipeline.BlockSize()
	cfg.Channels = pipeline.Channels()

	logger := logging.ForService("audiofx")
	if logger == nil {
		logger = slog.Default()
	}

	return &RealTimeProcessor{
		cfg:       cfg,
		pipeline:  pipeline,
		block:     make([]float32, cfg.BlockSize*cfg.Channels),
		levelChan: make(chan LevelData, levelChannelSize),
		logger:    logger.With("component", "processor"),
	}, nil
}

// Levels returns the telemetry channel fed by the monitor loop.
func (rt *RealTimeProcessor) Levels() <-chan LevelData {
	return rt.levelChan
}

// Running reports whether the monitor loop is active.
func (rt *RealTimeProcessor) Running() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.running
}

// OnDeviceInput is the device capture callback. It decodes the PCM block
// and writes it into the pipeline input buffer. It must never block,
// allocate in steady state, or log.
func (rt *RealTimeProcessor) OnDeviceInput(pcm []byte) {
	rt.inSamples = DecodeS16LE(pcm, rt.inSamples)
	rt.pipeline.InputBuffer().Write(rt.inSamples)
}

// FillDeviceOutput is the device playback callback. It drains processed
// samples from the output buffer into the device's PCM block, zero-padding
// on underrun. Like OnDeviceInput it must never block or log.
func (rt *RealTimeProcessor) FillDeviceOutput(pcm []byte) {
	n := len(pcm) / 2
	if cap(rt.outSamples) < n {
		rt.outSamples = make([]float32, n)
	}
	rt.outSamples = rt.outSamples[:n]

	got := rt.pipeline.OutputBuffer().ReadInto(rt.outSamples)
	copied := got * rt.cfg.Channels
	for i := copied; i < n; i++ {
		rt.outSamples[i] = 0
	}

	rt.outBytes = EncodeS16LE(rt.outSamples, rt.outBytes)
	copy(pcm, rt.outBytes)
}

// StartStreaming starts the monitor loop and then the device stream.
// stream may be nil for offline use, in which case only the monitor loop
// runs.
func (rt *RealTimeProcessor) StartStreaming(stream AudioStream) error {
	rt.mu.Lock()
	if rt.running {
		rt.mu.Unlock()
		return errors.Newf("processor already running").
			Component("audiofx").
			Category(errors.CategoryState).
			Build()
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	rt.stream = stream
	rt.running = true
	rt.wg.Add(1)
	rt.mu.Unlock()

	go rt.monitorLoop(ctx)

	if stream != nil {
		if err := stream.Start(); err != nil {
			rt.shutdown()
			return errors.New(err).
				Component("audiofx").
				Category(errors.CategoryAudioDevice).
				Context("operation", "stream_start").
				Build()
		}
	}

	rt.logger.Info("streaming started",
		"sample_rate", rt.cfg.SampleRate,
		"block_size", rt.cfg.BlockSize,
		"channels", rt.cfg.Channels,
		"poll_interval", rt.cfg.PollInterval)
	return nil
}

// StopStreaming stops the device stream, shuts down the monitor loop and
// clears both buffers. Safe to call when not running.
func (rt *RealTimeProcessor) StopStreaming() error {
	// Take ownership of the stream under the lock so a concurrent caller
	// cannot stop or close the device twice.
	rt.mu.Lock()
	if !rt.running {
		rt.mu.Unlock()
		return nil
	}
	stream := rt.stream
	rt.stream = nil
	rt.mu.Unlock()

	var streamErr error
	if stream != nil {
		if err := stream.Stop(); err != nil {
			streamErr = errors.New(err).
				Component("audiofx").
				Category(errors.CategoryAudioDevice).
				Context("operation", "stream_stop").
				Build()
		}
		stream.Close()
	}

	rt.shutdown()
	rt.logger.Info("streaming stopped")
	return streamErr
}

func (rt *RealTimeProcessor) shutdown() {
	rt.mu.Lock()
	if !rt.running {
		rt.mu.Unlock()
		return
	}
	rt.running = false
	cancel := rt.cancel
	rt.cancel = nil
	rt.stream = nil
	rt.mu.Unlock()

	cancel()
	rt.wg.Wait()

	rt.pipeline.InputBuffer().Clear()
	rt.pipeline.OutputBuffer().Clear()
}

// monitorLoop polls the input buffer and processes every complete block
// that has accumulated, keeping up with the callback cadence even when a
// tick is late. A panic inside one iteration is recovered and the block is
// passed through unprocessed.
func (rt *RealTimeProcessor) monitorLoop(ctx context.Context) {
	defer rt.wg.Done()

	ticker := time.NewTicker(rt.cfg.PollInterval)
	defer ticker.Stop()

	blockSamples := rt.cfg.BlockSize * rt.cfg.Channels

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for rt.pipeline.InputBuffer().Available() >= rt.cfg.BlockSize {
				rt.processOne(blockSamples)
			}
		}
	}
}

func (rt *RealTimeProcessor) processOne(blockSamples int) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("block processing panic, passing through", "panic", r)
			rt.pipeline.OutputBuffer().Write(rt.block[:blockSamples])
		}
	}()

	got := rt.pipeline.InputBuffer().ReadInto(rt.block[:blockSamples])
	if got == 0 {
		return
	}

	in := rt.block[:blockSamples]
	SendLevel(rt.levelChan, CalculateLevel(in, rt.cfg.Source))

	out := rt.pipeline.ProcessBlock(in)
	rt.pipeline.OutputBuffer().Write(out)
}
