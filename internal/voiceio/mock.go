package voiceio

import (
	"context"
	"encoding/base64"
	"sync"

	"github.com/kwabenadarko/navicare/internal/audio"
)

// MockSynthesizer produces a short silent buffer for any text. It stands in
// for a real speech service in development and tests.
type MockSynthesizer struct {
	SampleRateHz int
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{SampleRateHz: 24000}
}

func (s *MockSynthesizer) Synthesize(_ context.Context, text, _ string) (Synthesis, error) {
	if text == "" {
		return Synthesis{}, nil
	}
	frames := len(text) * 24
	pcm := make([]byte, frames*2)
	return Synthesis{
		AudioBase64:  base64.StdEncoding.EncodeToString(pcm),
		SampleRateHz: s.SampleRateHz,
		Channels:     1,
	}, nil
}

// MockDevice records played buffers.
type MockDevice struct {
	mu     sync.Mutex
	closed bool
	played []*audio.Buffer
}

func NewMockDevice() *MockDevice { return &MockDevice{} }

func (d *MockDevice) Play(ctx context.Context, buf *audio.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.played = append(d.played, buf)
	return nil
}

func (d *MockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *MockDevice) Played() []*audio.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*audio.Buffer, len(d.played))
	copy(out, d.played)
	return out
}

func (d *MockDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
