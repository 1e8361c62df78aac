// Package recorder owns the capture session lifecycle: at most one
// recording at a time, started and stopped from the control goroutine,
// with a dedicated worker goroutine owning the device stream.
package recorder

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/audio"
	"github.com/voicetray/voicetray/internal/wav"
)

var (
	// ErrAlreadyRecording is returned by Start while a session exists.
	ErrAlreadyRecording = errors.New("a recording session is already running")
	// ErrNotRecording is returned by Stop when no session exists.
	ErrNotRecording = errors.New("no recording session is running")
	// ErrNoAudioCaptured is returned by Stop when the device started
	// successfully but delivered no frames.
	ErrNoAudioCaptured = errors.New("no audio was captured")
	// ErrWorkerPanicked is returned by Stop when the capture worker
	// terminated abnormally. Only observable at join time.
	ErrWorkerPanicked = errors.New("capture worker panicked")
)

// Recorder holds the process-wide session slot. Start and Stop do
// their check-then-act under the slot lock, so concurrent starts
// cannot both succeed and concurrent stops cannot both tear down the
// same session.
type Recorder struct {
	host audio.Host
	log  zerolog.Logger

	mu      sync.Mutex
	session *session
}

func New(host audio.Host, log zerolog.Logger) *Recorder {
	return &Recorder{host: host, log: log}
}

// session is one recording, created by Start and consumed by Stop.
type session struct {
	buf        *audio.Buffer
	sampleRate int
	stop       chan struct{} // closed by Stop to signal teardown
	done       chan error    // buffered; worker's exit status, nil or panic
}

type startResult struct {
	sampleRate int
	err        error
}

// Start begins capturing from the default input device. It blocks only
// until the worker reports that the stream is live, or that device
// setup failed, never for the duration of the recording.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return ErrAlreadyRecording
	}

	sess := &session{
		buf:  audio.NewBuffer(),
		stop: make(chan struct{}),
		done: make(chan error, 1),
	}
	ready := make(chan startResult, 1)

	go sess.run(r.host, ready, r.log)

	res := <-ready
	if res.err != nil {
		// The worker is already on its way out; done is buffered so
		// it never leaks.
		return res.err
	}

	sess.sampleRate = res.sampleRate
	r.session = sess
	r.log.Info().Int("sample_rate", res.sampleRate).Msg("Recording started")
	return nil
}

// Stop ends the active recording and returns the captured audio as a
// complete WAV file. It blocks until the worker has torn down the
// stream and released the device; only then is the shared buffer read,
// so no callback can race the drain.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	sess := r.session
	r.session = nil
	r.mu.Unlock()

	if sess == nil {
		return nil, ErrNotRecording
	}

	close(sess.stop)
	if err := <-sess.done; err != nil {
		return nil, err
	}

	samples := sess.buf.Drain()
	if len(samples) == 0 {
		return nil, ErrNoAudioCaptured
	}

	r.log.Info().Int("samples", len(samples)).Msg("Recording stopped")
	return wav.Encode(samples, sess.sampleRate)
}

// IsRecording reports whether a session is active.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}
