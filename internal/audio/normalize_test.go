package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func f32Bytes(samples ...float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

func s16Bytes(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func u16Bytes(samples ...uint16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], s)
	}
	return out
}

func TestNormalizeF32PassThrough(t *testing.T) {
	got := normalizeF32(f32Bytes(0.25, -0.5, 1.0), 3, 1)
	want := []float32{0.25, -0.5, 1.0}

	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestNormalizeFullScaleIsUnity(t *testing.T) {
	if got := normalizeF32(f32Bytes(1.0, 1.0), 1, 2); got[0] != 1.0 {
		t.Errorf("f32 full scale: expected 1.0, got %f", got[0])
	}
	if got := normalizeS16(s16Bytes(math.MaxInt16, math.MaxInt16), 1, 2); got[0] != 1.0 {
		t.Errorf("s16 full scale: expected 1.0, got %f", got[0])
	}
	// The u16 remap lands within one quantization step of unity.
	got := normalizeU16(u16Bytes(math.MaxUint16, math.MaxUint16), 1, 2)
	if diff := math.Abs(float64(got[0] - 1.0)); diff > 1.0/math.MaxUint16 {
		t.Errorf("u16 full scale: expected ~1.0, got %f", got[0])
	}
}

func TestNormalizeSilence(t *testing.T) {
	for _, channels := range []int{1, 2, 6} {
		frames := 5
		raw := make([]byte, frames*channels*2)
		got := normalizeS16(raw, frames, channels)
		if len(got) != frames {
			t.Fatalf("channels=%d: expected %d samples, got %d", channels, frames, len(got))
		}
		for i, s := range got {
			if s != 0 {
				t.Errorf("channels=%d sample %d: expected 0, got %f", channels, i, s)
			}
		}
	}

	// u16 silence is mid-scale, not zero bytes.
	mid := uint16(math.MaxUint16 / 2)
	got := normalizeU16(u16Bytes(mid), 1, 1)
	if diff := math.Abs(float64(got[0])); diff > 1.0/math.MaxUint16 {
		t.Errorf("u16 midpoint: expected ~0.0, got %f", got[0])
	}
}

func TestNormalizeDownmixesToChannelMean(t *testing.T) {
	got := normalizeF32(f32Bytes(
		0.0, 1.0,
		0.5, 0.5,
		-0.5, 0.5,
	), 3, 2)
	want := []float32{0.5, 0.5, 0.0}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestNormalizeS16Scaling(t *testing.T) {
	got := normalizeS16(s16Bytes(16384, -16384), 2, 1)
	want := float32(16384) / float32(math.MaxInt16)

	if got[0] != want {
		t.Errorf("expected %f, got %f", want, got[0])
	}
	if got[1] != -want {
		t.Errorf("expected %f, got %f", -want, got[1])
	}
}

func TestNormalizeDegenerateBatches(t *testing.T) {
	if got := normalizeF32(nil, 0, 1); got != nil {
		t.Errorf("empty batch: expected nil, got %v", got)
	}
	if got := normalizeS16(s16Bytes(100), 1, 0); got != nil {
		t.Errorf("zero channels: expected nil, got %v", got)
	}
	if got := normalizeU16(nil, -1, 2); got != nil {
		t.Errorf("negative frame count: expected nil, got %v", got)
	}
}
