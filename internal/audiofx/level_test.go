package audiofx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLevel(t *testing.T) {
	t.Run("empty block", func(t *testing.T) {
		level := CalculateLevel(nil, "input")
		assert.Equal(t, -120.0, level.PeakDB)
		assert.Equal(t, -120.0, level.RMSDB)
		assert.Equal(t, "input", level.Source)
	})

	t.Run("full scale sine", func(t *testing.T) {
		block := make([]float32, 48000)
		for i := range block {
			block[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
		}
		level := CalculateLevel(block, "input")

		assert.InDelta(t, 1.0, level.Peak, 1e-3)
		assert.InDelta(t, 1.0/math.Sqrt2, level.RMS, 1e-3)
		assert.InDelta(t, 0.0, level.PeakDB, 0.05)
		assert.InDelta(t, -3.01, level.RMSDB, 0.05)
		assert.True(t, level.Clipping)
	})

	t.Run("half scale constant", func(t *testing.T) {
		block := make([]float32, 512)
		for i := range block {
			block[i] = 0.5
		}
		level := CalculateLevel(block, "input")

		assert.InDelta(t, 0.5, level.Peak, 1e-9)
		assert.InDelta(t, 0.5, level.RMS, 1e-9)
		assert.InDelta(t, -6.02, level.PeakDB, 0.01)
		assert.False(t, level.Clipping)
	})

	t.Run("silence hits the floor", func(t *testing.T) {
		level := CalculateLevel(make([]float32, 512), "input")
		assert.Equal(t, -120.0, level.PeakDB)
		assert.Equal(t, -120.0, level.RMSDB)
	})
}

func TestSendLevel_NonBlocking(t *testing.T) {
	ch := make(chan LevelData, 1)

	assert.True(t, SendLevel(ch, LevelData{Source: "a"}))
	assert.False(t, SendLevel(ch, LevelData{Source: "b"}), "full channel drops the update")

	got := <-ch
	assert.Equal(t, "a", got.Source)
}

func TestDecodeEncodeS16LE(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F}
	samples := DecodeS16LE(pcm, nil)

	assert.InDelta(t, 0.5, samples[0], 1e-4)
	assert.InDelta(t, -0.5, samples[1], 1e-4)
	assert.InDelta(t, 1.0, samples[2], 1e-3)

	back := EncodeS16LE(samples, nil)
	assert.Equal(t, pcm, back)
}

func TestEncodeS16LE_Clamps(t *testing.T) {
	out := EncodeS16LE([]float32{2.0, -2.0}, nil)
	samples := DecodeS16LE(out, nil)
	assert.InDelta(t, 1.0, samples[0], 1e-3)
	assert.InDelta(t, -1.0, samples[1], 1e-3)
}
