package audiofx

import "math"

// levelFloorDB is reported for silent blocks.
const levelFloorDB = -120.0

// clipThreshold marks samples considered clipped in float terms.
const clipThreshold = 0.999

// LevelData holds per-block level telemetry for one source.
type LevelData struct {
	Peak     float64 `json:"peak"`     // linear peak magnitude
	RMS      float64 `json:"rms"`      // linear RMS
	PeakDB   float64 `json:"peakDb"`   // peak in dBFS
	RMSDB    float64 `json:"rmsDb"`    // RMS in dBFS
	Clipping bool    `json:"clipping"` // true if any sample hit full scale
	Source   string  `json:"source"`   // source identifier
}

// CalculateLevel computes peak and RMS level metrics for a block of
// interleaved float32 samples.
func CalculateLevel(block []float32, source string) LevelData {
	if len(block) == 0 {
		return LevelData{PeakDB: levelFloorDB, RMSDB: levelFloorDB, Source: source}
	}

	var sum float64
	peak := 0.0
	clipping := false

	for i := range block {
		s := math.Abs(float64(block[i]))
		sum += s * s
		if s > peak {
			peak = s
		}
		if s >= clipThreshold {
			clipping = true
		}
	}

	rms := math.Sqrt(sum / float64(len(block)))

	return LevelData{
		Peak:     peak,
		RMS:      rms,
		PeakDB:   amplitudeDB(peak),
		RMSDB:    amplitudeDB(rms),
		Clipping: clipping,
		Source:   source,
	}
}

func amplitudeDB(a float64) float64 {
	if a <= 0 {
		return levelFloorDB
	}
	db := 20.0 * math.Log10(a)
	if db < levelFloorDB {
		return levelFloorDB
	}
	return db
}

// SendLevel sends level data to the channel without blocking. Returns true
// if the data was sent; a full channel silently drops the update.
func SendLevel(ch chan LevelData, data LevelData) bool {
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}
