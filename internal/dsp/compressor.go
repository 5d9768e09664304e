package dsp

import "math"

// Compressor default parameter values.
const (
	defaultCompThresholdDB = -20.0
	defaultCompRatio       = 4.0
	defaultCompAttack      = 0.005 // seconds
	defaultCompRelease     = 0.1   // seconds
	defaultCompMakeupDB    = 0.0
	defaultCompKneeDB      = 6.0
)

// Compressor is a soft-knee dynamics compressor with an asymmetric
// attack/release envelope follower.
//
// Parameters: threshold (dB), ratio (>= 1), attack_time (s),
// release_time (s), makeup_gain (dB), knee_width (dB).
type Compressor struct {
	baseEffect

	thresholdDB float64
	ratio       float64
	attackTime  float64
	releaseTime float64
	makeupDB    float64
	kneeDB      float64

	// derived per-sample coefficients
	attackCoeff  float64
	releaseCoeff float64
	makeupLin    float64

	// envelope carried across blocks
	envelope float64
}

// NewCompressor creates a compressor with default settings.
func NewCompressor(sampleRate, blockSize int) *Compressor {
	c := &Compressor{
		baseEffect:  newBaseEffect("Compressor", TypeCompressor, sampleRate, blockSize),
		thresholdDB: defaultCompThresholdDB,
		ratio:       defaultCompRatio,
		attackTime:  defaultCompAttack,
		releaseTime: defaultCompRelease,
		makeupDB:    defaultCompMakeupDB,
		kneeDB:      defaultCompKneeDB,
	}
	c.recompute()
	c.syncParams()
	return c
}

func (c *Compressor) syncParams() {
	c.storeParam("threshold", c.thresholdDB)
	c.storeParam("ratio", c.ratio)
	c.storeParam("attack_time", c.attackTime)
	c.storeParam("release_time", c.releaseTime)
	c.storeParam("makeup_gain", c.makeupDB)
	c.storeParam("knee_width", c.kneeDB)
}

func (c *Compressor) recompute() {
	c.attackCoeff = envelopeCoeff(c.attackTime, c.sampleRate)
	c.releaseCoeff = envelopeCoeff(c.releaseTime, c.sampleRate)
	c.makeupLin = dbToLinear(c.makeupDB)
}

// SetParameter stores a parameter value and recomputes the derived
// coefficients. Unknown names are ignored.
func (c *Compressor) SetParameter(name string, value float64) {
	switch name {
	case "threshold":
		c.thresholdDB = value
	case "ratio":
		c.ratio = math.Max(1.0, value)
	case "attack_time":
		c.attackTime = value
	case "release_time":
		c.releaseTime = value
	case "makeup_gain":
		c.makeupDB = value
	case "knee_width":
		c.kneeDB = math.Max(0.0, value)
	default:
		return
	}
	c.storeParam(name, value)
	c.recompute()
}

// Process runs one block through the compressor.
func (c *Compressor) Process(block []float32) []float32 {
	return c.run(block, c.transform)
}

func (c *Compressor) transform(buf []float32) {
	for i := range buf {
		level := math.Abs(float64(buf[i]))

		// asymmetric envelope follower
		if level > c.envelope {
			c.envelope += c.attackCoeff * (level - c.envelope)
		} else {
			c.envelope += c.releaseCoeff * (level - c.envelope)
		}

		reduction := c.gainReductionDB(linearToDB(c.envelope))
		gain := dbToLinear(-reduction) * c.makeupLin
		buf[i] = float32(float64(buf[i]) * gain)
	}
}

// gainReductionDB computes the soft-knee gain reduction in dB for an
// envelope level in dB.
func (c *Compressor) gainReductionDB(levelDB float64) float64 {
	slope := 1.0 - 1.0/c.ratio
	kneeHalf := c.kneeDB / 2.0

	switch {
	case levelDB <= c.thresholdDB-kneeHalf:
		return 0.0
	case levelDB >= c.thresholdDB+kneeHalf:
		return (levelDB - c.thresholdDB) * slope
	default:
		// quadratic blend inside the knee
		over := levelDB - c.thresholdDB + kneeHalf
		return slope * over * over / (2.0 * c.kneeDB)
	}
}

// Reset clears the envelope state.
func (c *Compressor) Reset() {
	c.envelope = 0
}
