package recorder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	gwav "github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/audio"
)

type fakeStream struct {
	cfg        audio.StreamConfig
	fn         audio.FrameFunc
	startErr   error
	closePanic bool
	closed     bool
}

func (s *fakeStream) Config() audio.StreamConfig { return s.cfg }

func (s *fakeStream) Start() error { return s.startErr }

func (s *fakeStream) Close() error {
	if s.closePanic {
		panic("driver invariant violated")
	}
	s.closed = true
	return nil
}

type fakeHost struct {
	cfg        audio.StreamConfig
	openErr    error
	startErr   error
	closePanic bool
	stream     *fakeStream
}

func (h *fakeHost) OpenDefaultInput(fn audio.FrameFunc) (audio.Stream, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	h.stream = &fakeStream{cfg: h.cfg, fn: fn, startErr: h.startErr, closePanic: h.closePanic}
	return h.stream, nil
}

func (h *fakeHost) Close() error { return nil }

// feed pushes frames of a constant f32 mono value through the device
// callback, as the driver thread would.
func (h *fakeHost) feed(value float32, frames int) {
	raw := make([]byte, 4*frames)
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(value))
	}
	h.stream.fn(raw, frames)
}

func newTestHost() *fakeHost {
	return &fakeHost{cfg: audio.StreamConfig{Format: audio.FormatF32, Channels: 1, SampleRate: 16000}}
}

func TestStartStopProducesDecodableWAV(t *testing.T) {
	host := newTestHost()
	rec := New(host, zerolog.Nop())

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !rec.IsRecording() {
		t.Fatal("expected recorder to report an active session")
	}

	host.feed(0.5, 16)

	data, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !host.stream.closed {
		t.Error("stream should be closed after stop")
	}

	dec := gwav.NewDecoder(bytes.NewReader(data))
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dec.SampleRate != 16000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("unexpected header: rate=%d chans=%d bits=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(pcm.Data) != 16 {
		t.Fatalf("expected 16 samples, got %d", len(pcm.Data))
	}
	for i, s := range pcm.Data {
		if s != 16383 { // 0.5 * 32767, truncated
			t.Fatalf("sample %d: expected 16383, got %d", i, s)
		}
	}
}

func TestStartWhileRecording(t *testing.T) {
	host := newTestHost()
	rec := New(host, zerolog.Nop())

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := rec.Start(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}

	host.feed(0.1, 1)
	if _, err := rec.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestStopIsNotIdempotent(t *testing.T) {
	host := newTestHost()
	rec := New(host, zerolog.Nop())

	if _, err := rec.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording before any start, got %v", err)
	}

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	host.feed(0.1, 4)

	if _, err := rec.Stop(); err != nil {
		t.Fatalf("first Stop failed: %v", err)
	}
	if _, err := rec.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording on second stop, got %v", err)
	}
}

func TestStopWithoutFramesFails(t *testing.T) {
	host := newTestHost()
	rec := New(host, zerolog.Nop())

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	data, err := rec.Stop()
	if !errors.Is(err, ErrNoAudioCaptured) {
		t.Fatalf("expected ErrNoAudioCaptured, got %v", err)
	}
	if data != nil {
		t.Error("no partial WAV output on failure")
	}
}

func TestStartSurfacesDeviceError(t *testing.T) {
	host := newTestHost()
	host.openErr = errors.New("permission denied")
	rec := New(host, zerolog.Nop())

	err := rec.Start()
	var de *audio.DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if rec.IsRecording() {
		t.Error("failed start must not leave a session behind")
	}
}

func TestStartSurfacesStreamStartFailure(t *testing.T) {
	host := newTestHost()
	host.startErr = errors.New("device busy")
	rec := New(host, zerolog.Nop())

	err := rec.Start()
	var de *audio.DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if !host.stream.closed {
		t.Error("stream should be closed when start fails")
	}
}

func TestUnsupportedFormatThenRecovery(t *testing.T) {
	host := newTestHost()
	host.cfg.Format = audio.FormatS32
	rec := New(host, zerolog.Nop())

	err := rec.Start()
	var ufe *audio.UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if rec.IsRecording() {
		t.Fatal("no session may exist after a rejected format")
	}

	host.cfg.Format = audio.FormatS16
	if err := rec.Start(); err != nil {
		t.Fatalf("start after switching to a supported device failed: %v", err)
	}

	raw := make([]byte, 2)
	binary.LittleEndian.PutUint16(raw, uint16(int16(1000)))
	host.stream.fn(raw, 1)

	if _, err := rec.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestWorkerPanicSurfacesAtStop(t *testing.T) {
	host := newTestHost()
	host.closePanic = true
	rec := New(host, zerolog.Nop())

	if err := rec.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	host.feed(0.2, 8)

	_, err := rec.Stop()
	if !errors.Is(err, ErrWorkerPanicked) {
		t.Fatalf("expected ErrWorkerPanicked, got %v", err)
	}
	if rec.IsRecording() {
		t.Error("session must be gone after a panicked worker is joined")
	}
}
