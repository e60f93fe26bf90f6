package httpapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kwabenadarko/navicare/internal/protocol"
	"github.com/kwabenadarko/navicare/internal/triage"
)

// wsConn tracks what one websocket client has already seen so session
// history can be streamed incrementally.
type wsConn struct {
	sessionID string
	ctrl      *triage.Controller
	voice     *voiceSession
	outbound  chan any

	mu          sync.Mutex
	sentTurns   int
	verdictSent bool
	audioSeq    int
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}

	ctrl, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	voice := s.voices.get(sessionID)
	if voice == nil {
		respondError(w, http.StatusNotFound, "session_not_found", "voice coordinator missing")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	wc := &wsConn{
		sessionID: sessionID,
		ctrl:      ctrl,
		voice:     voice,
		outbound:  make(chan any, 256),
	}

	voice.setSink(wc.audioSink())
	voice.coordinator.SetTranscriptHandler(func(text string) {
		wc.submit(ctx, text)
	})
	defer func() {
		voice.coordinator.StopListening()
		voice.clearSink()
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-wc.outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok && s.metrics != nil {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	// Replay what the session already holds, then stream deltas.
	wc.syncState()
	wc.emitVoiceState()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			wc.emit(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Detail:    err.Error(),
			})
			continue
		}
		if t, ok := messageTypeOf(parsed); ok && s.metrics != nil {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}
		s.dispatchWS(ctx, wc, parsed)
		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
	}
}

func (s *Server) dispatchWS(ctx context.Context, wc *wsConn, msg any) {
	language := wc.ctrl.Snapshot().Language
	switch m := msg.(type) {
	case protocol.UserText:
		go wc.submit(ctx, m.Text)
	case protocol.ClientControl:
		switch m.Action {
		case protocol.ActionReset:
			wc.ctrl.Reset()
			wc.resetProgress()
			wc.emit(protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: wc.sessionID, Code: "session_reset"})
			wc.syncState()
			wc.emitVoiceState()
		case protocol.ActionSwitchMode:
			wc.ctrl.SwitchMode(triage.Mode(strings.ToLower(strings.TrimSpace(m.Mode))))
			wc.syncState()
		case protocol.ActionSpeak:
			if !wc.voice.coordinator.Speak(ctx, m.Text, language) {
				wc.emit(protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: wc.sessionID, Code: "speak_busy"})
			}
			wc.emitVoiceState()
		case protocol.ActionStartListening:
			if err := wc.voice.coordinator.StartListening(ctx, language); err != nil {
				wc.emit(protocol.ErrorEvent{Type: protocol.TypeErrorEvent, SessionID: wc.sessionID, Code: "capture_unavailable", Detail: err.Error()})
			}
			wc.emitVoiceState()
		case protocol.ActionStopListening:
			wc.voice.coordinator.StopListening()
			wc.emitVoiceState()
		}
	case protocol.CaptureTranscript:
		wc.voice.capture.PushTranscript(m.Text)
	case protocol.CaptureError:
		wc.voice.capture.PushError(m.Code, m.Detail)
		wc.emitVoiceState()
	case protocol.CaptureEnd:
		wc.voice.capture.PushEnd()
		wc.emitVoiceState()
	}
}

// submit drives one reasoning round trip and streams the outcome.
func (wc *wsConn) submit(ctx context.Context, text string) {
	if !wc.ctrl.Submit(ctx, text) {
		wc.emit(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: wc.sessionID,
			Code:      "not_accepting",
			Detail:    "session is idle or a reply is already pending",
		})
		return
	}
	wc.syncState()
	wc.emitVoiceState()
}

// syncState emits turns the client has not seen yet, the verdict once, and
// the current session state.
func (wc *wsConn) syncState() {
	snap := wc.ctrl.Snapshot()

	wc.mu.Lock()
	if wc.sentTurns > len(snap.History) {
		// Session was reset under us.
		wc.sentTurns = 0
		wc.verdictSent = false
	}
	fresh := snap.History[wc.sentTurns:]
	wc.sentTurns = len(snap.History)
	verdict := snap.Verdict
	emitVerdict := verdict != nil && !wc.verdictSent
	if emitVerdict {
		wc.verdictSent = true
	}
	wc.mu.Unlock()

	for _, turn := range fresh {
		wc.emit(protocol.TurnEvent{
			Type:      protocol.TypeTurnEvent,
			SessionID: wc.sessionID,
			Role:      string(turn.Role),
			Text:      turn.Text,
			TSMs:      turn.CreatedAt.UnixMilli(),
		})
	}
	if emitVerdict {
		wc.emit(protocol.VerdictEvent{
			Type:           protocol.TypeVerdictEvent,
			SessionID:      wc.sessionID,
			Level:          string(verdict.Level),
			Specialty:      verdict.Specialty,
			Summary:        verdict.Summary,
			Recommendation: verdict.Recommendation,
		})
	}
	wc.emit(protocol.SessionState{
		Type:      protocol.TypeSessionState,
		SessionID: wc.sessionID,
		State:     string(snap.State),
		Mode:      string(snap.Mode),
		Escalated: snap.EmergencyEscalated,
		Pending:   snap.Pending,
	})
}

func (wc *wsConn) resetProgress() {
	wc.mu.Lock()
	wc.sentTurns = 0
	wc.verdictSent = false
	wc.mu.Unlock()
}

func (wc *wsConn) emitVoiceState() {
	state := wc.voice.coordinator.Snapshot()
	wc.emit(protocol.VoiceState{
		Type:      protocol.TypeVoiceState,
		SessionID: wc.sessionID,
		Listening: state.Listening,
		Speaking:  state.Speaking,
	})
}

func (wc *wsConn) audioSink() func(chunk []byte, final bool) error {
	return func(chunk []byte, final bool) error {
		wc.mu.Lock()
		wc.audioSeq++
		seq := wc.audioSeq
		wc.mu.Unlock()

		wc.emit(protocol.SpeechAudioChunk{
			Type:        protocol.TypeSpeechAudioChunk,
			SessionID:   wc.sessionID,
			Seq:         seq,
			Format:      "wav",
			AudioBase64: base64.StdEncoding.EncodeToString(chunk),
			Final:       final,
		})
		return nil
	}
}

// emit queues a message for the single writer goroutine. Messages are
// dropped when the outbound queue is saturated, never blocked on.
func (wc *wsConn) emit(msg any) {
	select {
	case wc.outbound <- msg:
	default:
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.UserText:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.CaptureTranscript:
		return m.Type, true
	case protocol.CaptureError:
		return m.Type, true
	case protocol.CaptureEnd:
		return m.Type, true
	case protocol.TurnEvent:
		return m.Type, true
	case protocol.VerdictEvent:
		return m.Type, true
	case protocol.SpeechAudioChunk:
		return m.Type, true
	case protocol.VoiceState:
		return m.Type, true
	case protocol.SessionState:
		return m.Type, true
	case protocol.SystemEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
