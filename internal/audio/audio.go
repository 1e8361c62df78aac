package audio

import (
	"fmt"

	"github.com/rs/zerolog"
)

// FrameFunc receives one callback batch of raw interleaved frames.
type FrameFunc func(raw []byte, frames int)

// Host opens input devices. Implemented by the miniaudio backend and
// by in-process fakes in tests.
type Host interface {
	// OpenDefaultInput opens the default input device with its native
	// configuration and binds fn to its data callback. The stream is
	// not running until Start is called.
	OpenDefaultInput(fn FrameFunc) (Stream, error)
	Close() error
}

// Stream is a live capture stream. It is owned by the goroutine that
// opened it and must be started and closed from that goroutine.
type Stream interface {
	Config() StreamConfig
	Start() error
	Close() error
}

// DeviceError wraps a failure from the underlying audio driver,
// preserving its message for diagnostics. Nothing is retried.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device error: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a device whose native sample
// encoding has no normalizer.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio input format: %s", e.Format)
}

// BuildInputStream opens the host's default input device and wires its
// callback through the matching normalizer into buf. The conversion
// function is resolved once here, from the negotiated format; a format
// outside f32/s16/u16 fails with UnsupportedFormatError. The returned
// stream is not yet started.
func BuildInputStream(host Host, buf *Buffer, log zerolog.Logger) (Stream, StreamConfig, error) {
	sink := newFrameSink(buf, log)
	stream, err := host.OpenDefaultInput(sink.push)
	if err != nil {
		return nil, StreamConfig{}, &DeviceError{Err: err}
	}

	cfg := stream.Config()
	convert, ok := normalizerFor(cfg.Format)
	if !ok {
		stream.Close()
		return nil, StreamConfig{}, &UnsupportedFormatError{Format: cfg.Format}
	}

	channels := cfg.Channels
	if channels < 1 {
		// A zero channel count would divide by zero in the down-mix.
		channels = 1
	}

	sink.bind(convert, channels)
	return stream, cfg, nil
}

// frameSink is the late-bound target of the device callback. The
// callback is registered with the driver before the negotiated format
// is known, so the sink starts inert and is armed once the normalizer
// has been resolved.
type frameSink struct {
	buf      *Buffer
	log      zerolog.Logger
	convert  normalizeFunc
	channels int
	armed    bool
}

func newFrameSink(buf *Buffer, log zerolog.Logger) *frameSink {
	return &frameSink{buf: buf, log: log}
}

// bind must be called before the stream is started.
func (s *frameSink) bind(convert normalizeFunc, channels int) {
	s.convert = convert
	s.channels = channels
	s.armed = true
}

// push runs on the driver's realtime callback thread. It must never
// block for long and must never panic the process: a full buffer drops
// the batch with a log line.
func (s *frameSink) push(raw []byte, frames int) {
	if !s.armed {
		return
	}
	samples := s.convert(raw, frames, s.channels)
	if len(samples) == 0 {
		return
	}
	if !s.buf.TryAppend(samples) {
		s.log.Error().Int("frames", frames).Msg("Sample buffer busy, dropping batch")
	}
}
