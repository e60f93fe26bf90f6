package voiceio

import (
	"context"

	"github.com/kwabenadarko/navicare/internal/audio"
)

type CaptureEventType string

const (
	CaptureEventTranscript CaptureEventType = "transcript"
	CaptureEventError      CaptureEventType = "error"
	CaptureEventEnd        CaptureEventType = "end"
)

// CaptureEvent is emitted by a capture session. Capture is final-result only:
// a transcript event carries the complete recognized utterance and the
// session ends afterwards.
type CaptureEvent struct {
	Type       CaptureEventType
	Transcript string
	Code       string
	Detail     string
}

type CaptureSession interface {
	Stop() error
}

// CaptureProvider starts speech capture in the given language.
type CaptureProvider interface {
	StartCapture(ctx context.Context, language string) (CaptureSession, <-chan CaptureEvent, error)
}

// Synthesis is the audio produced for one utterance. An empty Audio means
// the provider has nothing to say for this text, which is not an error.
type Synthesis struct {
	AudioBase64  string
	SampleRateHz int
	Channels     int
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) (Synthesis, error)
}

// OutputDevice plays decoded audio. Play blocks until playback finishes or
// the context is canceled. A closed device returns ErrDeviceClosed and the
// coordinator recreates it on the next utterance.
type OutputDevice interface {
	Play(ctx context.Context, buf *audio.Buffer) error
	Close() error
}

// DeviceFactory creates output devices on demand.
type DeviceFactory func() (OutputDevice, error)

// TranscriptHandler receives final transcripts from capture.
type TranscriptHandler func(text string)
