package httpapi

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, tsURL, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(tsURL, "http") + "/v1/triage/session/ws?session_id=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil consumes frames until one matches the predicate.
func readUntil(t *testing.T, conn *websocket.Conn, what string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("invalid frame %q: %v", data, err)
		}
		if match(msg) {
			return msg
		}
	}
	t.Fatalf("did not receive %s in time", what)
	return nil
}

func typeIs(want string) func(map[string]any) bool {
	return func(msg map[string]any) bool {
		return msg["type"] == want
	}
}

func TestWSStreamsConversation(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)
	conn := dialWS(t, ts.URL, id)

	// The greeting recorded at session creation is replayed on attach.
	greeting := readUntil(t, conn, "greeting turn", typeIs("turn_event"))
	if greeting["role"] != "assistant" {
		t.Fatalf("unexpected greeting turn %+v", greeting)
	}
	readUntil(t, conn, "initial session state", typeIs("session_state"))

	if err := conn.WriteJSON(map[string]any{"type": "user_text", "session_id": id, "text": "I have a headache"}); err != nil {
		t.Fatalf("write user_text: %v", err)
	}

	readUntil(t, conn, "echoed user turn", func(msg map[string]any) bool {
		return msg["type"] == "turn_event" && msg["role"] == "user"
	})
	reply := readUntil(t, conn, "assistant reply", func(msg map[string]any) bool {
		return msg["type"] == "turn_event" && msg["role"] == "assistant"
	})
	if reply["text"] != "How long has this been going on?" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestWSSpeakStreamsAudio(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)
	conn := dialWS(t, ts.URL, id)

	if err := conn.WriteJSON(map[string]any{"type": "client_control", "session_id": id, "action": "speak", "text": "hello"}); err != nil {
		t.Fatalf("write speak: %v", err)
	}

	chunk := readUntil(t, conn, "speech audio", typeIs("speech_audio_chunk"))
	if chunk["format"] != "wav" {
		t.Fatalf("unexpected chunk %+v", chunk)
	}
	if chunk["audio_base64"] == "" {
		t.Fatal("empty audio chunk")
	}
}

func TestWSCaptureBridge(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)
	conn := dialWS(t, ts.URL, id)

	if err := conn.WriteJSON(map[string]any{"type": "client_control", "session_id": id, "action": "start_listening"}); err != nil {
		t.Fatalf("write start_listening: %v", err)
	}
	readUntil(t, conn, "listening state", func(msg map[string]any) bool {
		return msg["type"] == "voice_state" && msg["listening"] == true
	})

	if err := conn.WriteJSON(map[string]any{"type": "capture_transcript", "session_id": id, "text": "my throat hurts"}); err != nil {
		t.Fatalf("write capture_transcript: %v", err)
	}

	turn := readUntil(t, conn, "transcribed user turn", func(msg map[string]any) bool {
		return msg["type"] == "turn_event" && msg["role"] == "user"
	})
	if turn["text"] != "my throat hurts" {
		t.Fatalf("unexpected turn %+v", turn)
	}
	readUntil(t, conn, "assistant reply", func(msg map[string]any) bool {
		return msg["type"] == "turn_event" && msg["role"] == "assistant"
	})
}

func TestWSReset(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)
	conn := dialWS(t, ts.URL, id)

	if err := conn.WriteJSON(map[string]any{"type": "client_control", "session_id": id, "action": "reset"}); err != nil {
		t.Fatalf("write reset: %v", err)
	}
	readUntil(t, conn, "reset event", func(msg map[string]any) bool {
		return msg["type"] == "system_event" && msg["code"] == "session_reset"
	})
	state := readUntil(t, conn, "idle session state", typeIs("session_state"))
	if state["state"] != "idle" {
		t.Fatalf("state after reset = %v, want idle", state["state"])
	}
}

func TestWSRejectsUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/triage/session/ws?session_id=nope"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("expected dial to fail for an unknown session")
	}
}
