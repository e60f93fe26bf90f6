package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kwabenadarko/navicare/internal/audio"
	"github.com/kwabenadarko/navicare/internal/triage"
)

type createSessionRequest struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
}

type sessionResponse struct {
	SessionID       string          `json:"session_id"`
	UserID          string          `json:"user_id"`
	Greeting        string          `json:"greeting,omitempty"`
	Snapshot        triage.Snapshot `json:"snapshot"`
	StartedAt       time.Time       `json:"started_at"`
	InactivityTTLMS int64           `json:"inactivity_ttl_ms"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = "anonymous"
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = s.cfg.DefaultLanguage
	}

	voice := newVoiceSession(s.synth, s.metrics)
	ctrl := triage.NewController(req.UserID, s.engine, voice.coordinator, s.archive, s.metrics)
	s.sessions.Add(ctrl)
	s.voices.add(ctrl.ID, voice)

	greeting := ctrl.Start(r.Context(), req.Language)

	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
		s.metrics.SessionEvents.WithLabelValues("created").Inc()
	}

	respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID:       ctrl.ID,
		UserID:          ctrl.UserID,
		Greeting:        greeting,
		Snapshot:        ctrl.Snapshot(),
		StartedAt:       ctrl.StartedAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) *triage.Controller {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return nil
	}
	ctrl, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return nil
	}
	return ctrl
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFromPath(w, r)
	if ctrl == nil {
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{
		SessionID:       ctrl.ID,
		UserID:          ctrl.UserID,
		Snapshot:        ctrl.Snapshot(),
		StartedAt:       ctrl.StartedAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFromPath(w, r)
	if ctrl == nil {
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "empty_text", "text is required")
		return
	}

	if !ctrl.Submit(r.Context(), req.Text) {
		respondError(w, http.StatusConflict, "not_accepting", "session is idle or a reply is already pending")
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

type switchModeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleSwitchMode(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFromPath(w, r)
	if ctrl == nil {
		return
	}

	var req switchModeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	mode := triage.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if mode != triage.ModeTriage && mode != triage.ModeSupport {
		respondError(w, http.StatusBadRequest, "invalid_mode", "mode must be triage or support")
		return
	}

	ctrl.SwitchMode(mode)
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFromPath(w, r)
	if ctrl == nil {
		return
	}
	ctrl.Reset()
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	ctrl, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.voices.remove(id)
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
		s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": ctrl.ID,
		"status":     triage.StatusEnded,
	})
}

type speakRequest struct {
	Text string `json:"text"`
}

// handleSpeak synthesizes one utterance and returns it as a WAV file. It
// bypasses the coordinator: a direct download has no exclusivity concerns.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	ctrl := s.sessionFromPath(w, r)
	if ctrl == nil {
		return
	}
	if s.synth == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "speech synthesis not configured")
		return
	}

	var req speakRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "empty_text", "text is required")
		return
	}

	ctrl.Touch()
	res, err := s.synth.Synthesize(r.Context(), req.Text, ctrl.Snapshot().Language)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues("synthesis", "call_failed").Inc()
		}
		respondError(w, http.StatusBadGateway, "synthesis_failed", err.Error())
		return
	}
	if res.AudioBase64 == "" {
		respondError(w, http.StatusBadGateway, "synthesis_failed", "provider returned no audio")
		return
	}

	buf, err := audio.DecodePCM16(res.AudioBase64, res.SampleRateHz, res.Channels)
	if err != nil {
		respondError(w, http.StatusBadGateway, "synthesis_failed", err.Error())
		return
	}
	wav, err := audio.EncodeWAV(buf)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wav)
}
