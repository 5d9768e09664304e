package dsp

import "math"

// NoiseGate default parameter values.
const (
	defaultGateThresholdDB = -50.0
	defaultGateAttack      = 0.001 // seconds
	defaultGateRelease     = 0.1   // seconds
	defaultGateHold        = 0.05  // seconds
	defaultGateRangeDB     = -60.0
)

type gateState int

const (
	gateOpen gateState = iota
	gateHolding
	gateClosed
)

// NoiseGate attenuates the signal toward the range floor when the input
// level stays below the threshold for longer than the hold time. Any block
// above the threshold snaps the gate back to open.
//
// Parameters: threshold (dB), attack_time (s), release_time (s),
// hold_time (s), range (dB, attenuation when closed).
type NoiseGate struct {
	baseEffect

	thresholdDB float64
	attackTime  float64
	releaseTime float64
	holdTime    float64
	rangeDB     float64

	// derived
	thresholdLin float64
	attackCoeff  float64
	releaseCoeff float64
	rangeLin     float64
	holdSamples  int

	// state carried across blocks
	state     gateState
	holdCount int
	gain      float64
}

// NewNoiseGate creates a gate with default settings, initially open.
func NewNoiseGate(sampleRate, blockSize int) *NoiseGate {
	g := &NoiseGate{
		baseEffect:  newBaseEffect("Noise Gate", TypeNoiseGate, sampleRate, blockSize),
		thresholdDB: defaultGateThresholdDB,
		attackTime:  defaultGateAttack,
		releaseTime: defaultGateRelease,
		holdTime:    defaultGateHold,
		rangeDB:     defaultGateRangeDB,
		state:       gateOpen,
		gain:        1.0,
	}
	g.recompute()
	g.storeParam("threshold", g.thresholdDB)
	g.storeParam("attack_time", g.attackTime)
	g.storeParam("release_time", g.releaseTime)
	g.storeParam("hold_time", g.holdTime)
	g.storeParam("range", g.rangeDB)
	return g
}

func (g *NoiseGate) recompute() {
	g.thresholdLin = dbToLinear(g.thresholdDB)
	g.attackCoeff = envelopeCoeff(g.attackTime, g.sampleRate)
	g.releaseCoeff = envelopeCoeff(g.releaseTime, g.sampleRate)
	g.rangeLin = dbToLinear(g.rangeDB)
	// holdCount accumulates interleaved samples, so the frame-based hold
	// time scales with the channel count.
	g.holdSamples = int(g.holdTime*float64(g.sampleRate)) * g.channels
}

// SetChannels rescales the hold window to the interleaved channel count.
func (g *NoiseGate) SetChannels(channels int) {
	g.baseEffect.SetChannels(channels)
	g.recompute()
}

// SetParameter stores a parameter value and recomputes the derived state.
// Unknown names are ignored.
func (g *NoiseGate) SetParameter(name string, value float64) {
	switch name {
	case "threshold":
		g.thresholdDB = value
	case "attack_time":
		g.attackTime = value
	case "release_time":
		g.releaseTime = value
	case "hold_time":
		g.holdTime = math.Max(0, value)
	case "range":
		g.rangeDB = value
	default:
		return
	}
	g.storeParam(name, value)
	g.recompute()
}

// Process runs one block through the gate.
func (g *NoiseGate) Process(block []float32) []float32 {
	return g.run(block, g.transform)
}

func (g *NoiseGate) transform(buf []float32) {
	peak := 0.0
	for i := range buf {
		if a := math.Abs(float64(buf[i])); a > peak {
			peak = a
		}
	}
	above := peak > g.thresholdLin

	// open -> holding -> closed, snapping back to open on any block
	// above the threshold
	switch g.state {
	case gateOpen:
		if !above {
			g.state = gateHolding
			g.holdCount = 0
		}
	case gateHolding:
		if above {
			g.state = gateOpen
		} else {
			g.holdCount += len(buf)
			if g.holdCount >= g.holdSamples {
				g.state = gateClosed
			}
		}
	case gateClosed:
		if above {
			g.state = gateOpen
		}
	}

	target := 1.0
	if g.state == gateClosed {
		target = g.rangeLin
	}

	// gain approaches its target through the same attack/release
	// smoothing the compressor uses
	for i := range buf {
		if target > g.gain {
			g.gain += g.attackCoeff * (target - g.gain)
		} else {
			g.gain += g.releaseCoeff * (target - g.gain)
		}
		buf[i] = float32(float64(buf[i]) * g.gain)
	}
}

// Reset reopens the gate with unity gain.
func (g *NoiseGate) Reset() {
	g.state = gateOpen
	g.holdCount = 0
	g.gain = 1.0
}
