package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualizer_FlatBandsPassThrough(t *testing.T) {
	// With all gains at 0 dB every band is skipped and the signal is
	// untouched.
	eq := NewEqualizer(testSampleRate, testBlockSize)

	input := make([]float32, testBlockSize)
	for i := range input {
		input[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / testSampleRate))
	}
	want := make([]float32, len(input))
	copy(want, input)

	out := eq.Process(input)
	for i := range out {
		assert.Equal(t, want[i], out[i], "sample %d", i)
	}
}

func TestEqualizer_MidBoostRaisesMidband(t *testing.T) {
	eq := NewEqualizer(testSampleRate, testBlockSize)
	eq.SetParameter("mid_gain", 12.0)

	signal := func() []float32 {
		block := make([]float32, testSampleRate)
		for i := range block {
			block[i] = float32(0.1 * math.Sin(2*math.Pi*1000*float64(i)/testSampleRate))
		}
		return block
	}

	input := signal()
	rmsBefore := blockRMS(input)
	out := eq.Process(input)
	rmsAfter := blockRMS(out)

	// A +12 dB peaking boost at the signal frequency roughly quadruples
	// the amplitude.
	assert.Greater(t, rmsAfter, rmsBefore*3.0)
	assert.Less(t, rmsAfter, rmsBefore*5.0)
}

func TestEqualizer_GainChangeKeepsBandState(t *testing.T) {
	eq := NewEqualizer(testSampleRate, testBlockSize)
	eq.SetParameter("low_shelf_gain", 6.0)
	eq.Process(constantBlock(testBlockSize, 0.2))

	band := eq.bands[0]
	require.Equal(t, "low_shelf", band.name)

	// A pure gain change swaps coefficients but keeps filter state.
	eq.SetParameter("low_shelf_gain", 3.0)
	assert.InDelta(t, 3.0, band.gainDB, 1e-10)

	// Structural changes reset the band state.
	eq.SetParameter("low_shelf_freq", 120.0)
	assert.InDelta(t, 120.0, band.freq, 1e-10)
}

func TestEqualizer_RejectsInvalidBandValues(t *testing.T) {
	eq := NewEqualizer(testSampleRate, testBlockSize)

	eq.SetParameter("mid_freq", 0)
	v, _ := eq.Parameter("mid_freq")
	assert.InDelta(t, 1000.0, v, 1e-10)

	eq.SetParameter("mid_freq", float64(testSampleRate))
	v, _ = eq.Parameter("mid_freq")
	assert.InDelta(t, 1000.0, v, 1e-10)

	eq.SetParameter("mid_q", -1.0)
	v, _ = eq.Parameter("mid_q")
	assert.InDelta(t, 1.0, v, 1e-10)
}

func blockRMS(block []float32) float64 {
	var sum float64
	for _, s := range block {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(block)))
}
