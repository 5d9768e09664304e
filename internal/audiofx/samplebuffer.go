package audiofx

import (
	"sync"

	"github.com/mkuoppala/audiofx/internal/errors"
)

// CircularSampleBuffer is a fixed-capacity wraparound buffer of interleaved
// float32 sample frames, shared between one producer and one consumer.
//
// Write never blocks and never fails: when the incoming block exceeds the
// free space, the oldest unread frames are discarded first. This trades
// correctness under overflow (data loss) for a non-blocking real-time
// guarantee. Losses are surfaced through the Overflows counter only.
type CircularSampleBuffer struct {
	mu        sync.Mutex
	data      []float32 // capacity * channels samples
	capacity  int       // frames
	channels  int
	writePos  int // frame index, always < capacity
	readPos   int // frame index, always < capacity
	count     int // valid frames, 0 <= count <= capacity
	overflows uint64
}

// NewCircularSampleBuffer creates a buffer holding capacityFrames frames of
// channels interleaved samples.
func NewCircularSampleBuffer(capacityFrames, channels int) (*CircularSampleBuffer, error) {
	if capacityFrames <= 0 {
		return nil, errors.Newf("invalid buffer capacity: %d frames", capacityFrames).
			Component("audiofx").
			Category(errors.CategoryValidation).
			Build()
	}
	if channels < 1 {
		return nil, errors.Newf("invalid channel count: %d", channels).
			Component("audiofx").
			Category(errors.CategoryValidation).
			Build()
	}
	return &CircularSampleBuffer{
		data:     make([]float32, capacityFrames*channels),
		capacity: capacityFrames,
		channels: channels,
	}, nil
}

// Write appends interleaved frames to the buffer, discarding the oldest
// unread frames if the block exceeds the free space. Partial trailing frames
// are dropped. It returns the number of frames stored.
func (b *CircularSampleBuffer) Write(block []float32) int {
	frames := len(block) / b.channels
	if frames == 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// a block larger than the whole buffer keeps only its newest frames
	if frames > b.capacity {
		block = block[(frames-b.capacity)*b.channels:]
		frames = b.capacity
		b.overflows++
	}

	if free := b.capacity - b.count; frames > free {
		discard := frames - free
		b.readPos = (b.readPos + discard) % b.capacity
		b.count -= discard
		b.overflows++
	}

	written := 0
	for written < frames {
		n := min(frames-written, b.capacity-b.writePos)
		copy(b.data[b.writePos*b.channels:(b.writePos+n)*b.channels],
			block[written*b.channels:(written+n)*b.channels])
		written += n
		b.writePos = (b.writePos + n) % b.capacity
	}
	b.count += frames

	return frames
}

// ReadInto fills dst with the oldest frames and advances the read cursor.
// It returns the number of frames copied, which may be less than requested;
// the caller is responsible for zero-padding the remainder.
func (b *CircularSampleBuffer) ReadInto(dst []float32) int {
	frames := len(dst) / b.channels
	if frames == 0 {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if frames > b.count {
		frames = b.count
	}

	read := 0
	for read < frames {
		n := min(frames-read, b.capacity-b.readPos)
		copy(dst[read*b.channels:(read+n)*b.channels],
			b.data[b.readPos*b.channels:(b.readPos+n)*b.channels])
		read += n
		b.readPos = (b.readPos + n) % b.capacity
	}
	b.count -= frames

	return frames
}

// Read returns the oldest min(n, available) frames.
func (b *CircularSampleBuffer) Read(n int) []float32 {
	if n <= 0 {
		return nil
	}
	dst := make([]float32, n*b.channels)
	frames := b.ReadInto(dst)
	return dst[:frames*b.channels]
}

// Available returns the number of valid frames in the buffer.
func (b *CircularSampleBuffer) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// FreeSpace returns the number of frames that fit without discarding.
func (b *CircularSampleBuffer) FreeSpace() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity - b.count
}

// Capacity returns the buffer capacity in frames.
func (b *CircularSampleBuffer) Capacity() int {
	return b.capacity
}

// Channels returns the channel count.
func (b *CircularSampleBuffer) Channels() int {
	return b.channels
}

// Overflows returns how many writes have discarded unread frames.
func (b *CircularSampleBuffer) Overflows() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflows
}

// Clear resets the cursors and frame count to zero.
func (b *CircularSampleBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writePos = 0
	b.readPos = 0
	b.count = 0
}
