// Package server exposes the recorder and the translation relay over
// a localhost HTTP API for the webview frontend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/app"
	"github.com/voicetray/voicetray/internal/recorder"
	"github.com/voicetray/voicetray/internal/relay"
)

type Server struct {
	httpServer *http.Server
	app        *app.App
	relay      *relay.Client
	log        zerolog.Logger
}

func New(address string, application *app.App, relayClient *relay.Client, log zerolog.Logger) *Server {
	s := &Server{
		app:   application,
		relay: relayClient,
		log:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/recording/start", s.handleStart)
	mux.HandleFunc("/api/recording/stop", s.handleStop)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/relay", s.handleRelay)

	s.httpServer = &http.Server{
		Addr:         address,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start begins serving in the background. Listen errors other than a
// clean shutdown are logged; the tray keeps working without the API.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("address", s.httpServer.Addr).Msg("HTTP API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP API failed")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.app.StartCapture(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"recording": true})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.app.StopCapture()
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"recording":          s.app.IsRecording(),
		"has_last_recording": len(s.app.LastRecording()) > 0,
	})
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req relay.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid relay request: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.relay.Forward(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// writeError maps recorder faults onto HTTP status codes: lifecycle
// misuse is the caller's fault, an empty capture is a distinguishable
// unprocessable state, everything else is a server-side failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, recorder.ErrAlreadyRecording), errors.Is(err, recorder.ErrNotRecording):
		status = http.StatusConflict
	case errors.Is(err, recorder.ErrNoAudioCaptured):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("Failed to write response")
	}
}
