package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kwabenadarko/navicare/internal/archive"
	"github.com/kwabenadarko/navicare/internal/config"
	"github.com/kwabenadarko/navicare/internal/observability"
	"github.com/kwabenadarko/navicare/internal/providers"
	"github.com/kwabenadarko/navicare/internal/store"
	"github.com/kwabenadarko/navicare/internal/triage"
	"github.com/kwabenadarko/navicare/internal/voiceio"
)

type Server struct {
	cfg       config.Config
	sessions  *triage.Manager
	engine    triage.Engine
	archive   archive.Store
	records   store.Store
	directory providers.Directory
	synth     voiceio.Synthesizer
	metrics   *observability.Metrics
	upgrader  websocket.Upgrader

	voices *voiceRegistry
}

func New(cfg config.Config, sessions *triage.Manager, engine triage.Engine, archiveStore archive.Store, records store.Store, directory providers.Directory, synth voiceio.Synthesizer, metrics *observability.Metrics) *Server {
	s := &Server{
		cfg:       cfg,
		sessions:  sessions,
		engine:    engine,
		archive:   archiveStore,
		records:   records,
		directory: directory,
		synth:     synth,
		metrics:   metrics,
		voices:    newVoiceRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Another site must not
				// be able to drive a user's assessment.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
	sessions.SetExpireHook(func(ctrl *triage.Controller) {
		s.voices.remove(ctrl.ID)
		if s.metrics != nil {
			s.metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
			s.metrics.SessionEvents.WithLabelValues("expired").Inc()
		}
	})
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/triage/session", s.handleCreateSession)
	r.Get("/v1/triage/session/ws", s.handleSessionWS)
	r.Get("/v1/triage/session/{id}", s.handleGetSession)
	r.Post("/v1/triage/session/{id}/message", s.handleMessage)
	r.Post("/v1/triage/session/{id}/mode", s.handleSwitchMode)
	r.Post("/v1/triage/session/{id}/reset", s.handleReset)
	r.Post("/v1/triage/session/{id}/end", s.handleEndSession)
	r.Post("/v1/triage/session/{id}/speak", s.handleSpeak)

	r.Post("/v1/providers/search", s.handleProviderSearch)
	r.Get("/v1/providers/saved", s.handleListSaved)
	r.Post("/v1/providers/saved", s.handleToggleSaved)
	r.Delete("/v1/providers/saved", s.handleDeleteSaved)

	r.Get("/v1/subscription", s.handleGetSubscription)
	r.Post("/v1/subscription", s.handleSaveSubscription)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
