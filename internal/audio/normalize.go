package audio

import (
	"encoding/binary"
	"math"
)

// The normalizers convert one callback batch of raw little-endian
// interleaved frames into mono float32 samples in [-1, 1], one sample
// per frame, by scaling each channel sample to unit range and
// averaging across the frame's channels.
//
// A batch with no frames or a channel count below 1 yields nil: an
// empty callback is a hardware quirk, not a fault.

func normalizeF32(raw []byte, frames, channels int) []float32 {
	if frames <= 0 || channels < 1 {
		return nil
	}
	out := make([]float32, 0, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 4
			sum += math.Float32frombits(binary.LittleEndian.Uint32(raw[off : off+4]))
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

func normalizeS16(raw []byte, frames, channels int) []float32 {
	if frames <= 0 || channels < 1 {
		return nil
	}
	out := make([]float32, 0, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			s := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			sum += float32(s) / float32(math.MaxInt16)
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

func normalizeU16(raw []byte, frames, channels int) []float32 {
	if frames <= 0 || channels < 1 {
		return nil
	}
	out := make([]float32, 0, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			u := binary.LittleEndian.Uint16(raw[off : off+2])
			sum += float32(u)/float32(math.MaxUint16)*2 - 1
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

type normalizeFunc func(raw []byte, frames, channels int) []float32

// normalizerFor resolves the conversion function for a device format.
// Resolved once when the stream is built, never per callback.
func normalizerFor(f Format) (normalizeFunc, bool) {
	switch f {
	case FormatF32:
		return normalizeF32, true
	case FormatS16:
		return normalizeS16, true
	case FormatU16:
		return normalizeU16, true
	default:
		return nil, false
	}
}
