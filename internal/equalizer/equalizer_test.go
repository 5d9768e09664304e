package equalizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_IsZero(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		f := &Filter{}
		assert.True(t, f.IsZero())
	})

	t.Run("initialized", func(t *testing.T) {
		f, err := NewLowPass(48000, 1000, 0.707)
		require.NoError(t, err)
		assert.False(t, f.IsZero())
	})
}

func TestNewFilter_Coefficients(t *testing.T) {
	f := NewFilter(LowPass, Coefficients{
		A0: 2.0, A1: 0.5, A2: 0.25,
		B0: 0.1, B1: 0.2, B2: 0.3,
	})

	assert.InDelta(t, 0.1/2.0, f.b0a0, 1e-10)
	assert.InDelta(t, 0.2/2.0, f.b1a0, 1e-10)
	assert.InDelta(t, 0.3/2.0, f.b2a0, 1e-10)
	assert.InDelta(t, 0.5/2.0, f.a1a0, 1e-10)
	assert.InDelta(t, 0.25/2.0, f.a2a0, 1e-10)
}

func TestFilter_ApplyBatch_InPlace(t *testing.T) {
	f, err := NewLowPass(48000, 1000, 0.707)
	require.NoError(t, err)

	input := []float32{1.0, 0.5, 0.0, -0.5, -1.0}
	originalAddr := &input[0]

	f.ApplyBatch(input)

	assert.Equal(t, originalAddr, &input[0], "should modify slice in place")
}

func TestFilter_ApplyBatch_DCSignal(t *testing.T) {
	// DC should pass through a lowpass filter unchanged after settling.
	f, err := NewLowPass(48000, 1000, 0.707)
	require.NoError(t, err)

	input := make([]float32, 1000)
	for i := range input {
		input[i] = 0.5
	}

	f.ApplyBatch(input)

	for i := 900; i < 1000; i++ {
		assert.InDelta(t, 0.5, input[i], 0.01, "DC should pass through lowpass (sample %d)", i)
	}
}

func TestFilter_ApplyBatch_HighFreqAttenuation(t *testing.T) {
	sampleRate := 48000.0
	cutoff := 1000.0
	highFreq := 10000.0

	f, err := NewLowPass(sampleRate, cutoff, 0.707)
	require.NoError(t, err)

	input := make([]float32, 48000)
	for i := range input {
		input[i] = float32(math.Sin(2 * math.Pi * highFreq * float64(i) / sampleRate))
	}

	rmsBefore := calculateRMS(input)
	f.ApplyBatch(input)
	rmsAfter := calculateRMS(input)

	assert.Less(t, rmsAfter, rmsBefore*0.5, "high frequency should be attenuated")
}

func TestFilter_ApplyBatch_StatePersistsAcrossBatches(t *testing.T) {
	// Running one long batch and two consecutive half batches must produce
	// identical output, since the filter state carries over.
	makeInput := func() []float32 {
		input := make([]float32, 512)
		for i := range input {
			input[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
		}
		return input
	}

	whole, err := NewLowPass(48000, 1000, 0.707)
	require.NoError(t, err)
	split, err := NewLowPass(48000, 1000, 0.707)
	require.NoError(t, err)

	a := makeInput()
	whole.ApplyBatch(a)

	b := makeInput()
	split.ApplyBatch(b[:256])
	split.ApplyBatch(b[256:])

	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-6, "sample %d", i)
	}
}

func TestFilter_SetCoefficients_PreservesState(t *testing.T) {
	f, err := NewPeaking(48000, 1000, 1.0, 6.0)
	require.NoError(t, err)

	input := make([]float32, 256)
	for i := range input {
		input[i] = float32(math.Sin(2 * math.Pi * 1000 * float64(i) / 48000))
	}
	f.ApplyBatch(input)

	in1, out1 := f.in1, f.out1
	f.SetCoefficients(PeakingCoefficients(48000, 1000, 1.0, 3.0))

	assert.Equal(t, in1, f.in1, "state should survive a coefficient swap")
	assert.Equal(t, out1, f.out1, "state should survive a coefficient swap")
}

func TestFilter_Reset(t *testing.T) {
	f, err := NewHighPass(48000, 100, 0.707)
	require.NoError(t, err)

	input := []float32{1.0, -1.0, 1.0, -1.0}
	f.ApplyBatch(input)
	require.NotZero(t, f.in1)

	f.Reset()
	assert.Zero(t, f.in1)
	assert.Zero(t, f.in2)
	assert.Zero(t, f.out1)
	assert.Zero(t, f.out2)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		frequency  float64
		q          float64
		wantErr    bool
	}{
		{"valid", 48000, 1000, 0.707, false},
		{"zero sample rate", 0, 1000, 0.707, true},
		{"zero frequency", 48000, 0, 0.707, true},
		{"frequency at nyquist", 48000, 24000, 0.707, true},
		{"zero q", 48000, 1000, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLowPass(tt.sampleRate, tt.frequency, tt.q)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShelfFilters_DCGain(t *testing.T) {
	// A low shelf with +6 dB gain should boost DC by roughly 6 dB.
	f, err := NewLowShelf(48000, 1000, 0.707, 6.0)
	require.NoError(t, err)

	input := make([]float32, 4000)
	for i := range input {
		input[i] = 0.25
	}
	f.ApplyBatch(input)

	expected := 0.25 * math.Pow(10, 6.0/20.0)
	assert.InDelta(t, expected, input[len(input)-1], 0.01)
}

func calculateRMS(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
