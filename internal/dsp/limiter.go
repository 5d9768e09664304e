package dsp

import "math"

// Limiter default parameter values.
const (
	defaultLimThresholdDB = -1.0
	defaultLimAttack      = 0.001 // seconds
	defaultLimRelease     = 0.05  // seconds
	defaultLimLookahead   = 0.005 // seconds
)

// Limiter is a lookahead brick-wall peak limiter. The signal is delayed by
// the lookahead window so the gain envelope can clamp before a transient
// reaches the output, and each emitted sample is additionally clamped to
// its own required gain so output peaks never exceed the threshold.
//
// Parameters: threshold (dB), attack_time (s), release_time (s),
// lookahead_time (s).
type Limiter struct {
	baseEffect

	thresholdDB   float64
	attackTime    float64
	releaseTime   float64
	lookaheadTime float64

	// derived
	thresholdLin float64
	attackCoeff  float64
	releaseCoeff float64
	lookahead    int // frames

	// state carried across blocks
	delay    []float32
	gains    []float64
	envelope float64
}

// NewLimiter creates a limiter with default settings.
func NewLimiter(sampleRate, blockSize int) *Limiter {
	l := &Limiter{
		baseEffect:    newBaseEffect("Limiter", TypeLimiter, sampleRate, blockSize),
		thresholdDB:   defaultLimThresholdDB,
		attackTime:    defaultLimAttack,
		releaseTime:   defaultLimRelease,
		lookaheadTime: defaultLimLookahead,
		envelope:      1.0,
	}
	l.recompute()
	l.storeParam("threshold", l.thresholdDB)
	l.storeParam("attack_time", l.attackTime)
	l.storeParam("release_time", l.releaseTime)
	l.storeParam("lookahead_time", l.lookaheadTime)
	return l
}

func (l *Limiter) recompute() {
	l.thresholdLin = dbToLinear(l.thresholdDB)
	l.attackCoeff = envelopeCoeff(l.attackTime, l.sampleRate)
	l.releaseCoeff = envelopeCoeff(l.releaseTime, l.sampleRate)

	lookahead := int(math.Round(l.lookaheadTime * float64(l.sampleRate)))
	if lookahead < 1 {
		lookahead = 1
	}
	if lookahead != l.lookahead {
		l.lookahead = lookahead
		l.delay = make([]float32, lookahead)
	}
}

// SetParameter stores a parameter value and recomputes the derived state.
// Changing the lookahead time reallocates the delay line. Unknown names are
// ignored.
func (l *Limiter) SetParameter(name string, value float64) {
	switch name {
	case "threshold":
		l.thresholdDB = value
	case "attack_time":
		l.attackTime = value
	case "release_time":
		l.releaseTime = value
	case "lookahead_time":
		if value <= 0 {
			return
		}
		l.lookaheadTime = value
	default:
		return
	}
	l.storeParam(name, value)
	l.recompute()
}

// Process runs one block through the limiter.
func (l *Limiter) Process(block []float32) []float32 {
	return l.run(block, l.transform)
}

func (l *Limiter) transform(buf []float32) {
	n := len(buf)
	ext := make([]float32, l.lookahead+n)
	copy(ext, l.delay)
	copy(ext[l.lookahead:], buf)

	if cap(l.gains) < len(ext) {
		l.gains = make([]float64, len(ext))
	}
	gains := l.gains[:len(ext)]

	// required gain per sample, smoothed: clamp fast on the attack
	// coefficient, recover slowly on the release coefficient
	for i := range ext {
		target := 1.0
		if a := math.Abs(float64(ext[i])); a > l.thresholdLin {
			target = l.thresholdLin / a
		}
		if target < l.envelope {
			l.envelope += l.attackCoeff * (target - l.envelope)
		} else {
			l.envelope += l.releaseCoeff * (target - l.envelope)
		}
		gains[i] = l.envelope
	}

	// emit the delayed portion: the gain applied to output sample i has
	// already seen the signal lookahead frames ahead of it. The smoothed
	// envelope may have released past the gain the emitted sample itself
	// needs, so clamp to its instantaneous required gain to keep the
	// ceiling hard.
	for i := 0; i < n; i++ {
		g := gains[i+l.lookahead]
		if a := math.Abs(float64(ext[i])); a > l.thresholdLin {
			if req := l.thresholdLin / a; req < g {
				g = req
			}
		}
		buf[i] = float32(float64(ext[i]) * g)
	}

	copy(l.delay, ext[n:])
}

// Reset clears the delay line and the gain envelope.
func (l *Limiter) Reset() {
	for i := range l.delay {
		l.delay[i] = 0
	}
	l.envelope = 1.0
}
