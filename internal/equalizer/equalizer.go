// Package equalizer provides biquad filters based on Robert Bristow-Johnson's
// audio EQ cookbook.
//
// This package supports the following digital filters:
//
//   - Low-pass
//   - High-pass
//   - Low-shelf
//   - High-shelf
//   - Peaking
//
// Filters carry persistent direct-form-I state across batches so that they
// can run block by block on a live stream. Coefficients can be swapped with
// SetCoefficients without touching that state, which keeps gain rides on a
// running filter free of clicks.
package equalizer

import (
	"fmt"
	"math"
)

// FilterName represents the kind of digital filter.
type FilterName int

// FilterName constants are digital filter names.
const (
	Undefined FilterName = iota
	LowPass
	HighPass
	LowShelf
	HighShelf
	Peaking
)

// Coefficients holds raw biquad coefficients as produced by the cookbook
// formulas, before normalization by a0.
type Coefficients struct {
	A0, A1, A2 float64
	B0, B1, B2 float64
}

// Filter holds the digital filter parameters and its direct-form-I state.
type Filter struct {
	name FilterName

	// state variables
	in1  float64
	in2  float64
	out1 float64
	out2 float64

	// coefficients normalized by a0
	b0a0, b1a0, b2a0, a1a0, a2a0 float64
}

// IsZero returns true when the f is not initialized.
func (f *Filter) IsZero() bool {
	return f.name == Undefined
}

// Name returns the filter kind.
func (f *Filter) Name() FilterName {
	return f.name
}

// NewFilter creates a new Filter from raw cookbook coefficients.
func NewFilter(name FilterName, c Coefficients) *Filter {
	f := &Filter{name: name}
	f.SetCoefficients(c)
	return f
}

// SetCoefficients replaces the filter coefficients while preserving the
// direct-form state, so a running filter keeps continuity across the change.
func (f *Filter) SetCoefficients(c Coefficients) {
	f.b0a0 = c.B0 / c.A0
	f.b1a0 = c.B1 / c.A0
	f.b2a0 = c.B2 / c.A0
	f.a1a0 = c.A1 / c.A0
	f.a2a0 = c.A2 / c.A0
}

// Reset clears the direct-form state.
func (f *Filter) Reset() {
	f.in1 = 0
	f.in2 = 0
	f.out1 = 0
	f.out2 = 0
}

// ApplyBatch applies the filter in place to a batch of samples. The
// arithmetic runs in float64 to keep the recursive state well conditioned.
func (f *Filter) ApplyBatch(input []float32) {
	for i := range input {
		in := float64(input[i])
		output := f.b0a0*in + f.b1a0*f.in1 + f.b2a0*f.in2 -
			f.a1a0*f.out1 - f.a2a0*f.out2

		f.in2 = f.in1
		f.in1 = in
		f.out2 = f.out1
		f.out1 = output

		input[i] = float32(output)
	}
}

func validateBand(sampleRate, frequency, q float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be greater than 0")
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return fmt.Errorf("frequency %.1f Hz outside (0, %.1f)", frequency, sampleRate/2)
	}
	if q <= 0 {
		return fmt.Errorf("q must be greater than 0")
	}
	return nil
}

// LowPassCoefficients computes low-pass coefficients.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz. e.g. 48000.0
//   - frequency ... cut off frequency in Hz.
//   - q ... Q value.
func LowPassCoefficients(sampleRate, frequency, q float64) Coefficients {
	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)

	return Coefficients{
		A0: 1.0 + alpha,
		A1: -2.0 * math.Cos(w0),
		A2: 1.0 - alpha,
		B0: (1.0 - math.Cos(w0)) / 2.0,
		B1: 1.0 - math.Cos(w0),
		B2: (1.0 - math.Cos(w0)) / 2.0,
	}
}

// HighPassCoefficients computes high-pass coefficients.
func HighPassCoefficients(sampleRate, frequency, q float64) Coefficients {
	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) / (2.0 * q)

	return Coefficients{
		A0: 1.0 + alpha,
		A1: -2.0 * math.Cos(w0),
		A2: 1.0 - alpha,
		B0: (1.0 + math.Cos(w0)) / 2.0,
		B1: -1.0 * (1.0 + math.Cos(w0)),
		B2: (1.0 + math.Cos(w0)) / 2.0,
	}
}

// LowShelfCoefficients computes low-shelf coefficients.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz. e.g. 48000.0
//   - frequency ... corner frequency in Hz.
//   - q ... Q value.
//   - gain ... shelf gain in dB.
func LowShelfCoefficients(sampleRate, frequency, q, gain float64) Coefficients {
	w0 := 2.0 * math.Pi * frequency / sampleRate
	a := math.Pow(10.0, (gain / 40.0))
	beta := math.Sqrt(a) / q

	return Coefficients{
		A0: (a + 1.0) + (a-1.0)*math.Cos(w0) + beta*math.Sin(w0),
		A1: -2.0 * ((a - 1.0) + (a+1.0)*math.Cos(w0)),
		A2: (a + 1.0) + (a-1.0)*math.Cos(w0) - beta*math.Sin(w0),
		B0: a * ((a + 1.0) - (a-1.0)*math.Cos(w0) + beta*math.Sin(w0)),
		B1: 2.0 * a * ((a - 1.0) - (a+1.0)*math.Cos(w0)),
		B2: a * ((a + 1.0) - (a-1.0)*math.Cos(w0) - beta*math.Sin(w0)),
	}
}

// HighShelfCoefficients computes high-shelf coefficients.
func HighShelfCoefficients(sampleRate, frequency, q, gain float64) Coefficients {
	w0 := 2.0 * math.Pi * frequency / sampleRate
	a := math.Pow(10.0, (gain / 40.0))
	beta := math.Sqrt(a) / q

	return Coefficients{
		A0: (a + 1.0) - (a-1.0)*math.Cos(w0) + beta*math.Sin(w0),
		A1: 2.0 * ((a - 1.0) - (a+1.0)*math.Cos(w0)),
		A2: (a + 1.0) - (a-1.0)*math.Cos(w0) - beta*math.Sin(w0),
		B0: a * ((a + 1.0) + (a-1.0)*math.Cos(w0) + beta*math.Sin(w0)),
		B1: -2.0 * a * ((a - 1.0) + (a+1.0)*math.Cos(w0)),
		B2: a * ((a + 1.0) + (a-1.0)*math.Cos(w0) - beta*math.Sin(w0)),
	}
}

// PeakingCoefficients computes peaking filter coefficients.
//
// Parameters:
//
//   - sampleRate ... sample rate in Hz. e.g. 48000.0
//   - frequency ... center frequency in Hz.
//   - width ... bandwidth in octaves.
//   - gain ... peak gain in dB.
func PeakingCoefficients(sampleRate, frequency, width, gain float64) Coefficients {
	w0 := 2.0 * math.Pi * frequency / sampleRate
	alpha := math.Sin(w0) * math.Sinh(math.Log(2.0)/2.0*width*w0/math.Sin(w0))
	a := math.Pow(10.0, (gain / 40.0))

	return Coefficients{
		A0: 1.0 + alpha/a,
		A1: -2.0 * math.Cos(w0),
		A2: 1.0 - alpha/a,
		B0: 1.0 + alpha*a,
		B1: -2.0 * math.Cos(w0),
		B2: 1.0 - alpha*a,
	}
}

// NewLowPass returns a low-pass filter.
func NewLowPass(sampleRate, frequency, q float64) (*Filter, error) {
	if err := validateBand(sampleRate, frequency, q); err != nil {
		return nil, err
	}
	return NewFilter(LowPass, LowPassCoefficients(sampleRate, frequency, q)), nil
}

// NewHighPass returns a high-pass filter.
func NewHighPass(sampleRate, frequency, q float64) (*Filter, error) {
	if err := validateBand(sampleRate, frequency, q); err != nil {
		return nil, err
	}
	return NewFilter(HighPass, HighPassCoefficients(sampleRate, frequency, q)), nil
}

// NewLowShelf returns a low-shelf filter.
func NewLowShelf(sampleRate, frequency, q, gain float64) (*Filter, error) {
	if err := validateBand(sampleRate, frequency, q); err != nil {
		return nil, err
	}
	return NewFilter(LowShelf, LowShelfCoefficients(sampleRate, frequency, q, gain)), nil
}

// NewHighShelf returns a high-shelf filter.
func NewHighShelf(sampleRate, frequency, q, gain float64) (*Filter, error) {
	if err := validateBand(sampleRate, frequency, q); err != nil {
		return nil, err
	}
	return NewFilter(HighShelf, HighShelfCoefficients(sampleRate, frequency, q, gain)), nil
}

// NewPeaking returns a peaking filter. width is the bandwidth in octaves.
func NewPeaking(sampleRate, frequency, width, gain float64) (*Filter, error) {
	if err := validateBand(sampleRate, frequency, width); err != nil {
		return nil, err
	}
	return NewFilter(Peaking, PeakingCoefficients(sampleRate, frequency, width, gain)), nil
}
