package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	// Client to server.
	TypeUserText          MessageType = "user_text"
	TypeClientControl     MessageType = "client_control"
	TypeCaptureTranscript MessageType = "capture_transcript"
	TypeCaptureError      MessageType = "capture_error"
	TypeCaptureEnd        MessageType = "capture_end"

	// Server to client.
	TypeTurnEvent        MessageType = "turn_event"
	TypeVerdictEvent     MessageType = "verdict_event"
	TypeSpeechAudioChunk MessageType = "speech_audio_chunk"
	TypeVoiceState       MessageType = "voice_state"
	TypeSessionState     MessageType = "session_state"
	TypeSystemEvent      MessageType = "system_event"
	TypeErrorEvent       MessageType = "error_event"
)

// Control actions carried by client_control.
const (
	ActionReset          = "reset"
	ActionSwitchMode     = "switch_mode"
	ActionSpeak          = "speak"
	ActionStartListening = "start_listening"
	ActionStopListening  = "stop_listening"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type UserText struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
	// Mode accompanies switch_mode, Text accompanies speak.
	Mode string `json:"mode,omitempty"`
	Text string `json:"text,omitempty"`
}

type CaptureTranscript struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type CaptureError struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type CaptureEnd struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

type TurnEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Role      string      `json:"role"`
	Text      string      `json:"text"`
	TSMs      int64       `json:"ts_ms"`
}

type VerdictEvent struct {
	Type           MessageType `json:"type"`
	SessionID      string      `json:"session_id"`
	Level          string      `json:"level"`
	Specialty      string      `json:"specialty,omitempty"`
	Summary        string      `json:"summary"`
	Recommendation string      `json:"recommendation"`
}

type SpeechAudioChunk struct {
	Type        MessageType `json:"type"`
	SessionID   string      `json:"session_id"`
	Seq         int         `json:"seq"`
	Format      string      `json:"format"`
	AudioBase64 string      `json:"audio_base64"`
	Final       bool        `json:"final"`
}

type VoiceState struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Listening bool        `json:"listening"`
	Speaking  bool        `json:"speaking"`
}

type SessionState struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	State     string      `json:"state"`
	Mode      string      `json:"mode"`
	Escalated bool        `json:"escalated"`
	Pending   bool        `json:"pending"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail"`
}

// ParseClientMessage decodes and validates an inbound websocket frame.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserText:
		var msg UserText
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Text == "" {
			return nil, errors.New("invalid user_text")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		switch msg.Action {
		case ActionReset, ActionStartListening, ActionStopListening:
		case ActionSwitchMode:
			if msg.Mode == "" {
				return nil, errors.New("switch_mode requires a mode")
			}
		case ActionSpeak:
			if msg.Text == "" {
				return nil, errors.New("speak requires text")
			}
		default:
			return nil, fmt.Errorf("unknown control action %q", msg.Action)
		}
		return msg, nil
	case TypeCaptureTranscript:
		var msg CaptureTranscript
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Text == "" {
			return nil, errors.New("invalid capture_transcript")
		}
		return msg, nil
	case TypeCaptureError:
		var msg CaptureError
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Code == "" {
			return nil, errors.New("invalid capture_error")
		}
		return msg, nil
	case TypeCaptureEnd:
		var msg CaptureEnd
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
