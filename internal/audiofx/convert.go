package audiofx

import "encoding/binary"

// sampleScale maps the int16 range onto [-1.0, 1.0).
const sampleScale = 32768.0

// DecodeS16LE converts little-endian signed 16-bit PCM into float32
// samples in dst. dst is grown as needed and the filled slice returned.
// Trailing odd bytes are ignored.
func DecodeS16LE(pcm []byte, dst []float32) []float32 {
	n := len(pcm) / 2
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		dst[i] = float32(s) / sampleScale
	}
	return dst
}

// EncodeS16LE converts float32 samples into little-endian signed 16-bit
// PCM, clamping anything outside [-1.0, 1.0). dst is grown as needed and
// the filled slice returned.
func EncodeS16LE(samples []float32, dst []byte) []byte {
	n := len(samples) * 2
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, sample := range samples {
		v := sample * sampleScale
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(v)))
	}
	return dst
}
