package audiofx

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mkuoppala/audiofx/internal/errors"
	"github.com/mkuoppala/audiofx/internal/logging"
	"github.com/mkuoppala/audiofx/internal/observability/metrics"
)

// defaultBufferBlocks sizes the input and output buffers in units of the
// block size when no explicit capacity is configured.
const defaultBufferBlocks = 8

// Pipeline owns the named processing chains plus the input and output
// circular sample buffers, routes each block through every enabled chain
// and blends the results, and tracks per-block processing time and
// overloads.
type Pipeline struct {
	id         string
	sampleRate int
	blockSize  int
	channels   int

	mu     sync.RWMutex
	chains map[string]*Chain
	order  []string // insertion order; never reordered by priority

	input  *CircularSampleBuffer
	output *CircularSampleBuffer

	history   *durationRing
	overloads atomic.Uint64
	enabled   atomic.Bool

	work []float32

	metrics *metrics.AudioFXMetrics
	logger  *slog.Logger
}

// NewPipeline creates a pipeline with empty chain registry and freshly
// allocated input/output buffers. metricsInstance may be nil.
func NewPipeline(id string, sampleRate, blockSize, channels int, metricsInstance *metrics.AudioFXMetrics) (*Pipeline, error) {
	return NewPipelineSized(id, sampleRate, blockSize, channels, defaultBufferBlocks, metricsInstance)
}

// NewPipelineSized is NewPipeline with an explicit input/output buffer
// capacity in blocks. Non-positive bufferBlocks falls back to the default.
func NewPipelineSized(id string, sampleRate, blockSize, channels, bufferBlocks int, metricsInstance *metrics.AudioFXMetrics) (*Pipeline, error) {
	if sampleRate <= 0 || blockSize <= 0 {
		return nil, errors.Newf("invalid pipeline format: sample rate %d, block size %d", sampleRate, blockSize).
			Component("audiofx").
			Category(errors.CategoryValidation).
			Build()
	}
	if bufferBlocks <= 0 {
		bufferBlocks = defaultBufferBlocks
	}

	input, err := NewCircularSampleBuffer(blockSize*bufferBlocks, channels)
	if err != nil {
		return nil, err
	}
	output, err := NewCircularSampleBuffer(blockSize*bufferBlocks, channels)
	if err != nil {
		return nil, err
	}

	logger := logging.ForService("audiofx")
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pipeline", "pipeline_id", id)

	p := &Pipeline{
		id:         id,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		channels:   channels,
		chains:     make(map[string]*Chain),
		input:      input,
		output:     output,
		history:    newDurationRing(defaultHistorySize),
		metrics:    metricsInstance,
		logger:     logger,
	}
	p.enabled.Store(true)
	return p, nil
}

func (p *Pipeline) ID() string      { return p.id }
func (p *Pipeline) SampleRate() int { return p.sampleRate }
func (p *Pipeline) BlockSize() int  { return p.blockSize }
func (p *Pipeline) Channels() int   { return p.channels }

// InputBuffer returns the buffer fed by the device input callback.
func (p *Pipeline) InputBuffer() *CircularSampleBuffer { return p.input }

// OutputBuffer returns the buffer drained by the device output callback.
func (p *Pipeline) OutputBuffer() *CircularSampleBuffer { return p.output }

// AddChain registers a chain. Duplicate ids are rejected.
func (p *Pipeline) AddChain(chain *Chain) error {
	if chain == nil {
		return errors.Newf("chain cannot be nil").
			Component("audiofx").
			Category(errors.CategoryValidation).
			Build()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.chains[chain.ID()]; exists {
		return errors.Newf("chain already exists: %s", chain.ID()).
			Component("audiofx").
			Category(errors.CategoryConflict).
			Context("chain_id", chain.ID()).
			Build()
	}

	p.chains[chain.ID()] = chain
	p.order = append(p.order, chain.ID())
	p.logger.Info("chain added",
		"chain_id", chain.ID(),
		"chain_name", chain.Name(),
		"priority", chain.Priority().String(),
		"latency_mode", chain.LatencyMode().String())
	return nil
}

// RemoveChain unregisters a chain by id.
func (p *Pipeline) RemoveChain(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.chains[id]; !exists {
		return errors.Newf("chain not found: %s", id).
			Component("audiofx").
			Category(errors.CategoryNotFound).
			Context("chain_id", id).
			Build()
	}

	delete(p.chains, id)
	for i, cid := range p.order {
		if cid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.logger.Info("chain removed", "chain_id", id)
	return nil
}

// Chain returns a chain by id.
func (p *Pipeline) Chain(id string) (*Chain, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.chains[id]
	return c, ok
}

// Chains returns the chains in insertion order.
func (p *Pipeline) Chains() []*Chain {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Chain, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.chains[id])
	}
	return out
}

// SetProcessingEnabled toggles the whole pipeline; when disabled,
// ProcessBlock passes input through unchanged.
func (p *Pipeline) SetProcessingEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *Pipeline) ProcessingEnabled() bool {
	return p.enabled.Load()
}

// Overloads returns how many blocks have exceeded their latency budget.
func (p *Pipeline) Overloads() uint64 {
	return p.overloads.Load()
}

// ProcessBlock routes one block through every enabled chain in insertion
// order, blending each chain's output into the running result as
// result = 0.5*result + 0.5*chainOut. With more than two chains this gives
// earlier chains more cumulative influence; the behavior is kept exactly
// for compatibility with existing sessions.
//
// The elapsed processing time is appended to the rolling history, and the
// overload counter increments when it exceeds the strictest latency budget
// among the enabled chains. The block is still emitted either way.
func (p *Pipeline) ProcessBlock(block []float32) []float32 {
	if !p.enabled.Load() {
		return block
	}

	start := time.Now()

	// Snapshot the registry under the lock; AddChain and RemoveChain may
	// run concurrently with the processing loop.
	p.mu.RLock()
	enabled := make([]*Chain, 0, len(p.order))
	for _, id := range p.order {
		if chain := p.chains[id]; chain.Enabled() {
			enabled = append(enabled, chain)
		}
	}
	p.mu.RUnlock()

	if cap(p.work) < len(block) {
		p.work = make([]float32, len(block))
	}
	result := p.work[:len(block)]
	copy(result, block)

	active := 0
	budget := time.Duration(0)
	for _, chain := range enabled {
		active++
		if b := chain.LatencyMode().Budget(); budget == 0 || b < budget {
			budget = b
		}

		chainOut := chain.Process(result)
		for i := range result {
			result[i] = 0.5*result[i] + 0.5*chainOut[i]
		}
	}

	elapsed := time.Since(start)
	p.history.Append(elapsed)

	if p.metrics != nil {
		p.metrics.RecordBlockProcessed(p.id, elapsed.Seconds())
		p.metrics.UpdateActiveChains(p.id, active)
	}

	if active > 0 && elapsed > budget {
		p.overloads.Add(1)
		if p.metrics != nil {
			p.metrics.RecordOverload(p.id)
		}
		p.logger.Warn("processing overload",
			"elapsed", elapsed,
			"budget", budget,
			"active_chains", active)
	}

	return result
}

// Snapshot recomputes the performance view over the rolling history.
func (p *Pipeline) Snapshot() PerformanceSnapshot {
	avg, minimum, maximum := p.history.Stats()

	active := 0
	strictest := LatencyHigh
	p.mu.RLock()
	for _, id := range p.order {
		chain := p.chains[id]
		if chain.Enabled() {
			active++
			if chain.LatencyMode() < strictest {
				strictest = chain.LatencyMode()
			}
		}
	}
	p.mu.RUnlock()

	return PerformanceSnapshot{
		AverageProcessingTime: avg,
		MinProcessingTime:     minimum,
		MaxProcessingTime:     maximum,
		OverloadCount:         p.overloads.Load(),
		ActiveChains:          active,
		LatencyMode:           strictest.String(),
		BlockSize:             p.blockSize,
		SampleRate:            p.sampleRate,
	}
}

// Reset clears the effect state of every chain, the processing history and
// both buffers.
func (p *Pipeline) Reset() {
	p.mu.RLock()
	for _, chain := range p.chains {
		chain.Reset()
	}
	p.mu.RUnlock()

	p.history.Reset()
	p.input.Clear()
	p.output.Clear()
}
