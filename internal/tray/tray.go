package tray

import (
	"context"
	"fmt"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/app"
	"github.com/voicetray/voicetray/internal/config"
	"github.com/voicetray/voicetray/internal/logging"
)

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// Menu items
	mRecord *systray.MenuItem
	mSave   *systray.MenuItem
}

// Status update methods for the app to call
func (u *UI) SetIdle() {
	u.updateStatus("idle")
	if u.mRecord != nil {
		u.mRecord.SetTitle("Start Recording")
	}
}

func (u *UI) SetRecording() {
	u.updateStatus("recording")
	if u.mRecord != nil {
		u.mRecord.SetTitle("Stop Recording")
	}
}

func (u *UI) SetError() {
	u.updateStatus("error")
	if u.mRecord != nil {
		u.mRecord.SetTitle("Start Recording")
	}
}

func New(cfg *config.Config, log zerolog.Logger, version, commit string) *UI {
	return &UI{
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

func (u *UI) Run(ctx context.Context) error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	// Use emoji instead of icon - microphone with initial status
	u.updateStatus("idle")
	systray.SetTooltip("Microphone recorder")

	// Build menu
	u.mRecord = systray.AddMenuItem("Start Recording", "Toggle microphone capture")
	u.mSave = systray.AddMenuItem("Save Last Recording", "Write the last recording to disk")
	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About voicetray")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mRecord.ClickedCh:
			u.app.ToggleCapture()
		case <-u.mSave.ClickedCh:
			u.saveLast()
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) saveLast() {
	path, err := u.app.SaveLast()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to save recording")
		return
	}
	u.log.Info().Str("path", path).Msg("Recording saved from tray")
}

func (u *UI) openLogs() {
	// No portable opener without another dependency; surface the path.
	u.log.Info().Str("path", logging.Path()).Msg("Log file location")
}

func (u *UI) showAbout() {
	fmt.Printf("voicetray %s (%s)\nSystem-tray microphone recorder\n", u.version, u.commit)
}

func (u *UI) onExit() {
	// Cleanup
}

// updateStatus sets the tray title with microphone emoji and status indicator
func (u *UI) updateStatus(status string) {
	emoji := emojiForStatus(status)
	systray.SetTitle(fmt.Sprintf("🎤 %s", emoji))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "recording":
		return "🔴" // Red - recording
	case "idle":
		return "🟢" // Green - ready/idle
	case "error":
		return "⚪️" // White - error
	default:
		return "🟢" // Green - default to ready
	}
}
