package audio

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// miniaudioHost is the hardware Host, backed by miniaudio. Devices are
// opened with zeroed format/channels/rate so the driver negotiates its
// native configuration, which is read back off the device afterwards.
type miniaudioHost struct {
	ctx *malgo.AllocatedContext
	log zerolog.Logger
}

// NewHost initializes the miniaudio context for the platform's default
// backend.
func NewHost(log zerolog.Logger) (Host, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug().Str("source", "miniaudio").Msg(strings.TrimSpace(message))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}
	return &miniaudioHost{ctx: ctx, log: log}, nil
}

func (h *miniaudioHost) OpenDefaultInput(fn FrameFunc) (Stream, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatUnknown
	cfg.Capture.Channels = 0
	cfg.SampleRate = 0
	cfg.Alsa.NoMMap = 1 // some ALSA drivers reject mmap access

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frames uint32) {
			fn(input, int(frames))
		},
		Stop: func() {
			// Fires on device loss mid-stream as well as on normal
			// shutdown. By then the start call has long returned, so
			// this is log-only.
			h.log.Warn().Msg("Capture device stopped")
		},
	}

	device, err := malgo.InitDevice(h.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("failed to open default input device: %w", err)
	}

	return &miniaudioStream{device: device}, nil
}

func (h *miniaudioHost) Close() error {
	if err := h.ctx.Uninit(); err != nil {
		return fmt.Errorf("failed to uninitialize miniaudio context: %w", err)
	}
	h.ctx.Free()
	return nil
}

type miniaudioStream struct {
	device *malgo.Device
}

func (s *miniaudioStream) Config() StreamConfig {
	return StreamConfig{
		Format:     formatFromMalgo(s.device.CaptureFormat()),
		Channels:   int(s.device.CaptureChannels()),
		SampleRate: int(s.device.SampleRate()),
	}
}

func (s *miniaudioStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	return nil
}

func (s *miniaudioStream) Close() error {
	s.device.Uninit()
	return nil
}

func formatFromMalgo(f malgo.FormatType) Format {
	switch f {
	case malgo.FormatF32:
		return FormatF32
	case malgo.FormatS16:
		return FormatS16
	case malgo.FormatU8:
		return FormatU8
	case malgo.FormatS24:
		return FormatS24
	case malgo.FormatS32:
		return FormatS32
	default:
		return FormatUnknown
	}
}
