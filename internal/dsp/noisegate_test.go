package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseGate_StaysOpenAboveThreshold(t *testing.T) {
	gate := NewNoiseGate(testSampleRate, testBlockSize)

	// -6 dB is far above the -50 dB threshold.
	out := settle(gate, 0.5, 5)
	assert.Equal(t, gateOpen, gate.state)
	for i := range out {
		assert.InDelta(t, 0.5, out[i], 1e-4, "sample %d", i)
	}
}

func TestNoiseGate_HoldHysteresis(t *testing.T) {
	gate := NewNoiseGate(testSampleRate, testBlockSize)
	gate.SetParameter("threshold", -50.0)
	gate.SetParameter("hold_time", 0.05)

	// Open the gate with a loud burst.
	settle(gate, 0.5, 5)
	require.Equal(t, gateOpen, gate.state)

	// A quiet signal below threshold but above silence shows the gain.
	quiet := float32(0.001) // -60 dB

	// hold_time 0.05 s at 48 kHz is 2400 samples, so the first quiet
	// blocks stay inside the hold window with gain pinned at 1.
	for block := 0; block < 4; block++ {
		out := gate.Process(constantBlock(testBlockSize, quiet))
		assert.NotEqual(t, gateClosed, gate.state, "block %d", block)
		for i := range out {
			assert.InDelta(t, quiet, out[i], 1e-5, "block %d sample %d", block, i)
		}
	}

	// Keep feeding quiet blocks until well past the hold window; the gate
	// must close and decay toward the range floor.
	var out []float32
	for block := 0; block < 60; block++ {
		out = gate.Process(constantBlock(testBlockSize, quiet))
	}
	require.Equal(t, gateClosed, gate.state)
	assert.Less(t, float64(out[testBlockSize-1]), float64(quiet)*0.05,
		"closed gate must attenuate toward the range floor")
}

func TestNoiseGate_HoldScalesWithChannels(t *testing.T) {
	// The hold time is a wall-clock window: on an interleaved stereo
	// stream each frame contributes two samples, so the same number of
	// quiet blocks covers half the time.
	mono := NewNoiseGate(testSampleRate, testBlockSize)
	stereo := NewNoiseGate(testSampleRate, testBlockSize)
	stereo.SetChannels(2)

	for _, gate := range []*NoiseGate{mono, stereo} {
		gate.SetParameter("hold_time", 0.05)
		settle(gate, 0.5, 2)
		require.Equal(t, gateOpen, gate.state)
		for block := 0; block < 8; block++ {
			gate.Process(constantBlock(testBlockSize, 0.001))
		}
	}

	// 8 quiet blocks are 3584 samples past the first: beyond 2400 mono
	// hold samples, inside 4800 stereo ones.
	assert.Equal(t, gateClosed, mono.state)
	assert.Equal(t, gateHolding, stereo.state)
}

func TestNoiseGate_SnapsBackOpen(t *testing.T) {
	gate := NewNoiseGate(testSampleRate, testBlockSize)

	// Drive the gate closed.
	for block := 0; block < 60; block++ {
		gate.Process(constantBlock(testBlockSize, 0.001))
	}
	require.Equal(t, gateClosed, gate.state)

	// One loud block reopens it; with a 1 ms attack the gain recovers
	// within the block.
	out := gate.Process(constantBlock(testBlockSize, 0.5))
	assert.Equal(t, gateOpen, gate.state)
	assert.InDelta(t, 0.5, out[testBlockSize-1], 0.025)
}

func TestNoiseGate_HoldingResetOnReopen(t *testing.T) {
	gate := NewNoiseGate(testSampleRate, testBlockSize)

	settle(gate, 0.5, 2)
	gate.Process(constantBlock(testBlockSize, 0.001))
	require.Equal(t, gateHolding, gate.state)

	// Back above threshold while holding snaps straight to open.
	gate.Process(constantBlock(testBlockSize, 0.5))
	assert.Equal(t, gateOpen, gate.state)
}

func TestNoiseGate_RangeFloor(t *testing.T) {
	gate := NewNoiseGate(testSampleRate, testBlockSize)
	gate.SetParameter("range", -20.0)
	gate.SetParameter("release_time", 0.005)

	for block := 0; block < 80; block++ {
		gate.Process(constantBlock(testBlockSize, 0.001))
	}
	require.Equal(t, gateClosed, gate.state)

	// With a short release the gain has converged to the -20 dB floor.
	assert.InDelta(t, dbToLinear(-20.0), gate.gain, 0.01)
}

func TestNoiseGate_Reset(t *testing.T) {
	gate := NewNoiseGate(testSampleRate, testBlockSize)
	for block := 0; block < 60; block++ {
		gate.Process(constantBlock(testBlockSize, 0.001))
	}
	require.Equal(t, gateClosed, gate.state)

	gate.Reset()
	assert.Equal(t, gateOpen, gate.state)
	assert.InDelta(t, 1.0, gate.gain, 1e-10)
	assert.Zero(t, gate.holdCount)
}
