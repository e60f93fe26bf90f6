package voiceio

import (
	"context"
	"sync"
)

// ChannelCaptureProvider bridges capture events produced elsewhere, such as
// a browser doing its own speech recognition over the websocket. The surface
// pushes transcripts in and the coordinator consumes them like any other
// capture source. Only the most recent session receives pushed events.
type ChannelCaptureProvider struct {
	mu      sync.Mutex
	current *channelCaptureSession
}

func NewChannelCaptureProvider() *ChannelCaptureProvider {
	return &ChannelCaptureProvider{}
}

func (p *ChannelCaptureProvider) StartCapture(_ context.Context, _ string) (CaptureSession, <-chan CaptureEvent, error) {
	session := &channelCaptureSession{
		provider: p,
		events:   make(chan CaptureEvent, 8),
	}

	p.mu.Lock()
	prev := p.current
	p.current = session
	p.mu.Unlock()

	if prev != nil {
		prev.close()
	}
	return session, session.events, nil
}

// PushTranscript delivers a final transcript to the live session. It is a
// no-op when nobody is listening.
func (p *ChannelCaptureProvider) PushTranscript(text string) {
	p.push(CaptureEvent{Type: CaptureEventTranscript, Transcript: text})
}

// PushError reports a client-side capture failure.
func (p *ChannelCaptureProvider) PushError(code, detail string) {
	p.push(CaptureEvent{Type: CaptureEventError, Code: code, Detail: detail})
}

// PushEnd signals that the client stopped capturing without a result.
func (p *ChannelCaptureProvider) PushEnd() {
	p.push(CaptureEvent{Type: CaptureEventEnd})
}

func (p *ChannelCaptureProvider) push(ev CaptureEvent) {
	p.mu.Lock()
	session := p.current
	p.mu.Unlock()
	if session == nil {
		return
	}
	session.deliver(ev)
}

type channelCaptureSession struct {
	provider *ChannelCaptureProvider

	mu     sync.Mutex
	closed bool
	events chan CaptureEvent
}

func (s *channelCaptureSession) deliver(ev CaptureEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *channelCaptureSession) Stop() error {
	s.provider.mu.Lock()
	if s.provider.current == s {
		s.provider.current = nil
	}
	s.provider.mu.Unlock()
	s.close()
	return nil
}

func (s *channelCaptureSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
