package protocol

import (
	"errors"
	"testing"
)

func TestParseUserText(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"user_text","session_id":"s1","text":"I have a cough"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := msg.(UserText)
	if !ok {
		t.Fatalf("unexpected type %T", msg)
	}
	if text.Text != "I have a cough" {
		t.Fatalf("unexpected text %q", text.Text)
	}
}

func TestParseClientControl(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"reset", `{"type":"client_control","session_id":"s1","action":"reset"}`, false},
		{"switch mode", `{"type":"client_control","session_id":"s1","action":"switch_mode","mode":"support"}`, false},
		{"switch mode without mode", `{"type":"client_control","session_id":"s1","action":"switch_mode"}`, true},
		{"speak", `{"type":"client_control","session_id":"s1","action":"speak","text":"hello"}`, false},
		{"speak without text", `{"type":"client_control","session_id":"s1","action":"speak"}`, true},
		{"start listening", `{"type":"client_control","session_id":"s1","action":"start_listening"}`, false},
		{"unknown action", `{"type":"client_control","session_id":"s1","action":"reboot"}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseClientMessage([]byte(tc.raw))
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseCaptureMessages(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"capture_transcript","session_id":"s1","text":"sore throat"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := msg.(CaptureTranscript); !ok {
		t.Fatalf("unexpected type %T", msg)
	}

	if _, err := ParseClientMessage([]byte(`{"type":"capture_transcript","session_id":"s1"}`)); err == nil {
		t.Fatal("expected empty transcript to fail")
	}

	msg, err = ParseClientMessage([]byte(`{"type":"capture_end","session_id":"s1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := msg.(CaptureEnd); !ok {
		t.Fatalf("unexpected type %T", msg)
	}
}

func TestParseUnsupportedType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"verdict_event"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestParseInvalidEnvelope(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{`)); err == nil {
		t.Fatal("expected invalid JSON to fail")
	}
}
