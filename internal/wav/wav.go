// Package wav turns a captured mono float stream into a complete
// in-memory WAV file: RIFF header, fmt chunk, little-endian signed
// 16-bit PCM data.
package wav

import (
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	gwav "github.com/go-audio/wav"
)

// EncodingError wraps a write or finalization fault from the container
// writer. Not expected in normal operation: the destination is memory.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("wav encoding error: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Encode quantizes samples to 16-bit PCM and renders a mono WAV file
// at the given sample rate. Each sample is clamped to [-1, 1] before
// scaling so an out-of-range input can never overflow the integer
// range; the scaled value is truncated toward zero, not rounded.
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, &EncodingError{Err: fmt.Errorf("sample rate must be positive, got %d", sampleRate)}
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = quantize(s)
	}

	out := &seekBuffer{}
	enc := gwav.NewEncoder(out, sampleRate, 16, 1, 1)

	pcm := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(pcm); err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("failed while writing samples: %w", err)}
	}
	if err := enc.Close(); err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("failed to finalize container: %w", err)}
	}

	return out.Bytes(), nil
}

func quantize(s float32) int {
	if s > 1.0 {
		s = 1.0
	} else if s < -1.0 {
		s = -1.0
	}
	return int(s * 32767)
}

// seekBuffer is an in-memory io.WriteSeeker. The encoder needs to seek
// back over the RIFF and data chunk sizes when it finalizes, which
// bytes.Buffer cannot do.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.data) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = int(pos)
	return pos, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.data
}
