package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settle runs enough constant blocks through an effect for its envelope
// followers to converge, returning the final output block.
func settle(effect Effect, level float32, blocks int) []float32 {
	var out []float32
	for i := 0; i < blocks; i++ {
		out = effect.Process(constantBlock(testBlockSize, level))
	}
	return out
}

func TestCompressor_SteadyStateReduction(t *testing.T) {
	// Constant -10 dB input against threshold -20 dB at 4:1 must settle to
	// about (-10 - (-20)) * (1 - 1/4) = 7.5 dB of gain reduction.
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("threshold", -20.0)
	comp.SetParameter("ratio", 4.0)
	comp.SetParameter("makeup_gain", 0.0)

	inputLevel := float32(dbToLinear(-10.0))
	out := settle(comp, inputLevel, 40)

	gainDB := linearToDB(float64(out[testBlockSize-1]) / float64(inputLevel))
	assert.InDelta(t, -7.5, gainDB, 0.2)
}

func TestCompressor_BelowKneeNoReduction(t *testing.T) {
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("threshold", -20.0)
	comp.SetParameter("ratio", 4.0)

	// -30 dB is well below threshold - knee/2, so gain stays at unity the
	// whole time, envelope settling included.
	inputLevel := float32(dbToLinear(-30.0))
	out := settle(comp, inputLevel, 10)

	for i := range out {
		assert.InDelta(t, inputLevel, out[i], 1e-6, "sample %d", i)
	}
}

func TestCompressor_HardKnee(t *testing.T) {
	// knee_width 0 must not divide by zero and must behave as a hard knee.
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("threshold", -20.0)
	comp.SetParameter("ratio", 2.0)
	comp.SetParameter("knee_width", 0.0)

	assert.InDelta(t, 0.0, comp.gainReductionDB(-20.0), 1e-10)
	assert.InDelta(t, 0.0, comp.gainReductionDB(-25.0), 1e-10)
	assert.InDelta(t, 5.0, comp.gainReductionDB(-10.0), 1e-10)
}

func TestCompressor_KneeBlendIsContinuous(t *testing.T) {
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("threshold", -20.0)
	comp.SetParameter("ratio", 4.0)
	comp.SetParameter("knee_width", 6.0)

	// At the knee boundaries the quadratic blend must meet the linear
	// segments.
	assert.InDelta(t, 0.0, comp.gainReductionDB(-23.0), 1e-9)
	assert.InDelta(t, 3.0*(1.0-1.0/4.0), comp.gainReductionDB(-17.0), 1e-9)

	// Inside the knee the reduction grows monotonically.
	prev := -1.0
	for levelDB := -23.0; levelDB <= -17.0; levelDB += 0.5 {
		r := comp.gainReductionDB(levelDB)
		assert.GreaterOrEqual(t, r, prev, "level %.1f dB", levelDB)
		prev = r
	}
}

func TestCompressor_MakeupGain(t *testing.T) {
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("threshold", 0.0)
	comp.SetParameter("makeup_gain", 6.0)

	out := settle(comp, 0.1, 2)
	assert.InDelta(t, 0.1*dbToLinear(6.0), float64(out[testBlockSize-1]), 1e-4)
}

func TestCompressor_RatioClamped(t *testing.T) {
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("ratio", 0.5)

	v, ok := comp.Parameter("ratio")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-10, "stored value keeps what was set")
	assert.InDelta(t, 1.0, comp.ratio, 1e-10, "effective ratio clamps to 1")
}

func TestCompressor_Reset(t *testing.T) {
	comp := NewCompressor(testSampleRate, testBlockSize)
	settle(comp, 0.5, 5)
	require.Greater(t, comp.envelope, 0.0)

	comp.Reset()
	assert.Zero(t, comp.envelope)
}

func TestCompressor_EnvelopeAsymmetry(t *testing.T) {
	// With a fast attack and slow release the envelope must rise quickly on
	// a loud block and fall slowly afterward.
	comp := NewCompressor(testSampleRate, testBlockSize)
	comp.SetParameter("attack_time", 0.001)
	comp.SetParameter("release_time", 0.5)

	settle(comp, 0.5, 4)
	peakEnv := comp.envelope
	require.InDelta(t, 0.5, peakEnv, 0.01)

	comp.Process(constantBlock(testBlockSize, 0.0))
	assert.Greater(t, comp.envelope, peakEnv*math.Exp(-float64(testBlockSize)/(0.5*testSampleRate))*0.9,
		"release must decay slowly")
}
