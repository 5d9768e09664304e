package dsp

import (
	"math"
	"strings"

	"github.com/mkuoppala/audiofx/internal/equalizer"
)

// eqGainSkipDB is the band gain magnitude below which a band is skipped.
// A skipped band passes audio through unmodified.
const eqGainSkipDB = 0.05

// eqBand is one band of the parametric equalizer with its own persistent
// biquad state.
type eqBand struct {
	name   string
	kind   equalizer.FilterName
	freq   float64
	q      float64
	gainDB float64
	filter *equalizer.Filter
}

func (b *eqBand) coefficients(sampleRate float64) equalizer.Coefficients {
	switch b.kind {
	case equalizer.LowShelf:
		return equalizer.LowShelfCoefficients(sampleRate, b.freq, b.q, b.gainDB)
	case equalizer.HighShelf:
		return equalizer.HighShelfCoefficients(sampleRate, b.freq, b.q, b.gainDB)
	default:
		return equalizer.PeakingCoefficients(sampleRate, b.freq, b.q, b.gainDB)
	}
}

// Equalizer is a five band parametric equalizer: a low shelf, three peaking
// bands and a high shelf, applied in series.
//
// Parameters per band: <band>_gain (dB), <band>_freq (Hz), <band>_q. Band
// names: low_shelf, low_mid, mid, high_mid, high_shelf. Gain changes keep
// the band's filter state so a gain ride on a running stream stays
// click-free; frequency and Q changes reset that band's state.
type Equalizer struct {
	baseEffect
	bands []*eqBand
}

// NewEqualizer creates an equalizer with all band gains at 0 dB.
func NewEqualizer(sampleRate, blockSize int) *Equalizer {
	eq := &Equalizer{
		baseEffect: newBaseEffect("Equalizer", TypeEqualizer, sampleRate, blockSize),
		bands: []*eqBand{
			{name: "low_shelf", kind: equalizer.LowShelf, freq: 80, q: 0.707},
			{name: "low_mid", kind: equalizer.Peaking, freq: 250, q: 1.0},
			{name: "mid", kind: equalizer.Peaking, freq: 1000, q: 1.0},
			{name: "high_mid", kind: equalizer.Peaking, freq: 4000, q: 1.0},
			{name: "high_shelf", kind: equalizer.HighShelf, freq: 12000, q: 0.707},
		},
	}
	sr := float64(sampleRate)
	for _, band := range eq.bands {
		band.filter = equalizer.NewFilter(band.kind, band.coefficients(sr))
		eq.storeParam(band.name+"_gain", band.gainDB)
		eq.storeParam(band.name+"_freq", band.freq)
		eq.storeParam(band.name+"_q", band.q)
	}
	return eq
}

// SetParameter updates a band parameter. Unknown names are ignored.
func (eq *Equalizer) SetParameter(name string, value float64) {
	for _, band := range eq.bands {
		suffix, ok := strings.CutPrefix(name, band.name+"_")
		if !ok {
			continue
		}

		structural := false
		switch suffix {
		case "gain":
			band.gainDB = value
		case "freq":
			if value <= 0 || value >= float64(eq.sampleRate)/2 {
				return
			}
			band.freq = value
			structural = true
		case "q":
			if value <= 0 {
				return
			}
			band.q = value
			structural = true
		default:
			return
		}

		band.filter.SetCoefficients(band.coefficients(float64(eq.sampleRate)))
		if structural {
			band.filter.Reset()
		}
		eq.storeParam(name, value)
		return
	}
}

// Process runs one block through the equalizer.
func (eq *Equalizer) Process(block []float32) []float32 {
	return eq.run(block, eq.transform)
}

func (eq *Equalizer) transform(buf []float32) {
	for _, band := range eq.bands {
		if math.Abs(band.gainDB) < eqGainSkipDB {
			continue
		}
		band.filter.ApplyBatch(buf)
	}
}

// Reset clears the filter state of every band.
func (eq *Equalizer) Reset() {
	for _, band := range eq.bands {
		band.filter.Reset()
	}
}
