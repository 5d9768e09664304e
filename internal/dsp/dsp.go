// Package dsp implements the real-time audio effects used by the processing
// pipeline: a soft-knee compressor, a five band parametric equalizer, a
// lookahead brick-wall limiter and a noise gate.
//
// Effects process interleaved float32 blocks in place of their internal
// scratch buffer and carry envelope/filter state across blocks. Parameter
// updates are applied under a short lock and take effect on the next block;
// Process itself is never locked, so a control thread may adjust parameters
// while the monitoring loop is streaming.
package dsp

import (
	"math"
	"sync"

	"github.com/mkuoppala/audiofx/internal/errors"
)

// Effect type identifiers as used on the configuration surface.
const (
	TypeCompressor = "compressor"
	TypeEqualizer  = "equalizer"
	TypeLimiter    = "limiter"
	TypeNoiseGate  = "noise_gate"
)

// silenceFloorDB is reported for levels at or below zero magnitude.
const silenceFloorDB = -120.0

// Effect is a stateful per-block audio transform.
type Effect interface {
	// Name returns a human-readable effect name.
	Name() string

	// SetName overrides the default name with a configured one.
	SetName(name string)

	// Type returns the configuration type identifier.
	Type() string

	// Process runs one block through the effect. With bypass set or the
	// effect disabled the input block is returned unchanged. The returned
	// slice may alias an internal scratch buffer that is reused on the
	// next call.
	Process(block []float32) []float32

	// SetParameter stores a named parameter value and recomputes derived
	// coefficients. Unknown names are ignored.
	SetParameter(name string, value float64)

	// Parameter returns the current value of a named parameter.
	Parameter(name string) (float64, bool)

	// Parameters returns a copy of all current parameter values.
	Parameters() map[string]float64

	// SetChannels declares the interleaved channel count of the blocks
	// this effect will see, so frame-based times like the gate hold stay
	// in wall-clock terms. Effects default to mono.
	SetChannels(channels int)

	// Reset clears all internal envelope and filter state.
	Reset()

	SetEnabled(enabled bool)
	Enabled() bool
	SetBypass(bypass bool)
	Bypassed() bool
	SetDryWet(mix float64)
	DryWet() float64
}

// New creates an effect of the given configuration type. Unknown types are
// rejected here, at the configuration boundary, and never reach the
// real-time path.
func New(effectType string, sampleRate, blockSize int) (Effect, error) {
	if sampleRate <= 0 || blockSize <= 0 {
		return nil, errors.Newf("invalid effect format: sample rate %d, block size %d", sampleRate, blockSize).
			Component("dsp").
			Category(errors.CategoryValidation).
			Build()
	}

	switch effectType {
	case TypeCompressor:
		return NewCompressor(sampleRate, blockSize), nil
	case TypeEqualizer:
		return NewEqualizer(sampleRate, blockSize), nil
	case TypeLimiter:
		return NewLimiter(sampleRate, blockSize), nil
	case TypeNoiseGate:
		return NewNoiseGate(sampleRate, blockSize), nil
	default:
		return nil, errors.Newf("unknown effect type: %s", effectType).
			Component("dsp").
			Category(errors.CategoryConfiguration).
			Context("effect_type", effectType).
			Build()
	}
}

// baseEffect carries the state shared by all effects: enable/bypass flags,
// the dry/wet mix and the parameter snapshot.
type baseEffect struct {
	name       string
	typ        string
	sampleRate int
	blockSize  int
	channels   int

	mu      sync.Mutex
	enabled bool
	bypass  bool
	dryWet  float64
	params  map[string]float64

	scratch []float32
}

func newBaseEffect(name, typ string, sampleRate, blockSize int) baseEffect {
	return baseEffect{
		name:       name,
		typ:        typ,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		channels:   1,
		enabled:    true,
		dryWet:     1.0,
		params:     make(map[string]float64),
	}
}

func (b *baseEffect) Name() string { return b.name }
func (b *baseEffect) Type() string { return b.typ }

func (b *baseEffect) SetName(name string) {
	if name != "" {
		b.name = name
	}
}

func (b *baseEffect) SetChannels(channels int) {
	if channels >= 1 {
		b.channels = channels
	}
}

func (b *baseEffect) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

func (b *baseEffect) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

func (b *baseEffect) SetBypass(bypass bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bypass = bypass
}

func (b *baseEffect) Bypassed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bypass
}

// SetDryWet sets the dry/wet mix ratio, clamped to [0, 1].
func (b *baseEffect) SetDryWet(mix float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dryWet = math.Min(1.0, math.Max(0.0, mix))
}

func (b *baseEffect) DryWet() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dryWet
}

func (b *baseEffect) storeParam(name string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params[name] = value
}

func (b *baseEffect) Parameter(name string) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.params[name]
	return v, ok
}

func (b *baseEffect) Parameters() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]float64, len(b.params))
	for k, v := range b.params {
		out[k] = v
	}
	return out
}

// run executes a transform with the shared bypass check and dry/wet blend.
// A panic inside the transform degrades to pass-through for this block so
// that no fault can abort the stream.
func (b *baseEffect) run(block []float32, transform func([]float32)) (out []float32) {
	out = block

	b.mu.Lock()
	bypass := b.bypass || !b.enabled
	wet := float32(b.dryWet)
	b.mu.Unlock()

	if bypass {
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out = block
		}
	}()

	if cap(b.scratch) < len(block) {
		b.scratch = make([]float32, len(block))
	}
	buf := b.scratch[:len(block)]
	copy(buf, block)

	transform(buf)

	if wet < 1.0 {
		dry := 1.0 - wet
		for i := range buf {
			buf[i] = wet*buf[i] + dry*block[i]
		}
	}

	return buf
}

// envelopeCoeff converts a time constant in seconds to a per-sample
// smoothing coefficient: 1 - exp(-1/(t*sampleRate)). A non-positive time
// yields 1, an instant response.
func envelopeCoeff(seconds float64, sampleRate int) float64 {
	if seconds <= 0 {
		return 1.0
	}
	return 1.0 - math.Exp(-1.0/(seconds*float64(sampleRate)))
}

// dbToLinear converts decibels to a linear amplitude factor.
func dbToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

// linearToDB converts a linear amplitude to decibels with a silence floor.
func linearToDB(linear float64) float64 {
	if linear <= 0 {
		return silenceFloorDB
	}
	db := 20.0 * math.Log10(linear)
	if db < silenceFloorDB {
		return silenceFloorDB
	}
	return db
}
