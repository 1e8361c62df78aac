package recorder

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/audio"
)

// run is the capture worker. The stream handle is not safe to operate
// from a thread other than the one that created it, so the worker pins
// its OS thread, builds and owns the stream, and reports the outcome
// of setup over the one-shot ready channel. After a successful setup
// it parks on the stop channel while the driver callback feeds the
// buffer; it never polls.
func (s *session) run(host audio.Host, ready chan<- startResult, log zerolog.Logger) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	defer func() {
		var exit error
		if p := recover(); p != nil {
			exit = fmt.Errorf("%w: %v", ErrWorkerPanicked, p)
			log.Error().Interface("panic", p).Msg("Capture worker panicked")
			// If setup never completed, unblock the starter as well.
			select {
			case ready <- startResult{err: exit}:
			default:
			}
		}
		s.done <- exit
	}()

	stream, cfg, err := audio.BuildInputStream(host, s.buf, log)
	if err != nil {
		ready <- startResult{err: err}
		return
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		ready <- startResult{err: &audio.DeviceError{Err: err}}
		return
	}

	ready <- startResult{sampleRate: cfg.SampleRate}

	<-s.stop

	stream.Close()
}
