package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/config"
	"github.com/voicetray/voicetray/internal/recorder"
)

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetIdle()
	SetRecording()
	SetError()
}

type Config struct {
	Recorder      *recorder.Recorder
	Config        *config.Config
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater // Optional - can be nil
}

// App coordinates the recorder for its two frontends, the tray menu
// and the localhost HTTP API, and keeps the most recent recording
// around so it can be saved after the fact.
type App struct {
	rec    *recorder.Recorder
	cfg    *config.Config
	log    zerolog.Logger
	status StatusUpdater

	mu   sync.Mutex
	last []byte
}

func New(cfg Config) *App {
	return &App{
		rec:    cfg.Recorder,
		cfg:    cfg.Config,
		log:    cfg.Logger,
		status: cfg.StatusUpdater,
	}
}

// StartCapture begins a recording session.
func (a *App) StartCapture() error {
	if err := a.rec.Start(); err != nil {
		if !errors.Is(err, recorder.ErrAlreadyRecording) && a.status != nil {
			a.status.SetError()
		}
		return err
	}
	if a.status != nil {
		a.status.SetRecording()
	}
	return nil
}

// StopCapture ends the session and returns the finished WAV bytes,
// retaining a copy as the last recording.
func (a *App) StopCapture() ([]byte, error) {
	data, err := a.rec.Stop()
	if err != nil {
		if a.status != nil {
			if errors.Is(err, recorder.ErrNotRecording) {
				a.status.SetIdle()
			} else {
				a.status.SetError()
			}
		}
		return nil, err
	}

	a.mu.Lock()
	a.last = data
	a.mu.Unlock()

	if a.status != nil {
		a.status.SetIdle()
	}
	return data, nil
}

// ToggleCapture flips between recording and idle. Used by the tray.
func (a *App) ToggleCapture() {
	if a.rec.IsRecording() {
		if _, err := a.StopCapture(); err != nil {
			a.log.Error().Err(err).Msg("Failed to stop recording")
		}
		return
	}
	if err := a.StartCapture(); err != nil {
		a.log.Error().Err(err).Msg("Failed to start recording")
	}
}

func (a *App) IsRecording() bool {
	return a.rec.IsRecording()
}

// LastRecording returns the most recent finished recording, or nil.
func (a *App) LastRecording() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// SaveLast writes the last recording into the configured recordings
// directory and puts the resulting path on the clipboard.
func (a *App) SaveLast() (string, error) {
	a.mu.Lock()
	data := a.last
	a.mu.Unlock()

	if len(data) == 0 {
		return "", fmt.Errorf("no recording to save")
	}

	dir := a.cfg.Recordings.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recordings directory: %w", err)
	}

	path := filepath.Join(dir, time.Now().Format("recording-20060102-150405.wav"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write recording: %w", err)
	}

	if err := clipboard.WriteAll(path); err != nil {
		// Saving worked; a missing clipboard provider is not fatal.
		a.log.Warn().Err(err).Msg("Could not copy recording path to clipboard")
	}

	a.log.Info().Str("path", path).Msg("Saved recording")
	return path, nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if !a.rec.IsRecording() {
		return nil
	}
	a.log.Info().Msg("Stopping in-flight recording for shutdown")
	if _, err := a.StopCapture(); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
		// Nothing to do with the audio at this point; note it and go.
		a.log.Warn().Err(err).Msg("Recording discarded during shutdown")
	}
	return nil
}
