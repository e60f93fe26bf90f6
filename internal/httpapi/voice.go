package httpapi

import (
	"sync"

	"github.com/kwabenadarko/navicare/internal/observability"
	"github.com/kwabenadarko/navicare/internal/voiceio"
)

// voiceSession binds one session's coordinator to whatever websocket is
// currently attached. Speech synthesized while no socket is connected is
// dropped rather than buffered.
type voiceSession struct {
	coordinator *voiceio.Coordinator
	capture     *voiceio.ChannelCaptureProvider

	mu   sync.Mutex
	sink voiceio.ChunkSink
}

func newVoiceSession(synth voiceio.Synthesizer, metrics *observability.Metrics) *voiceSession {
	v := &voiceSession{
		capture: voiceio.NewChannelCaptureProvider(),
	}
	v.coordinator = voiceio.NewCoordinator(v.capture, synth, func() (voiceio.OutputDevice, error) {
		return voiceio.NewStreamDevice(v.emit), nil
	}, metrics)
	return v
}

func (v *voiceSession) setSink(sink voiceio.ChunkSink) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sink = sink
}

func (v *voiceSession) clearSink() {
	v.setSink(nil)
}

func (v *voiceSession) emit(chunk []byte, final bool) error {
	v.mu.Lock()
	sink := v.sink
	v.mu.Unlock()
	if sink == nil {
		return nil
	}
	return sink(chunk, final)
}

// voiceRegistry tracks voice sessions alongside the triage manager so the
// websocket and REST surfaces reach the same coordinator.
type voiceRegistry struct {
	mu       sync.Mutex
	sessions map[string]*voiceSession
}

func newVoiceRegistry() *voiceRegistry {
	return &voiceRegistry{sessions: make(map[string]*voiceSession)}
}

func (r *voiceRegistry) add(sessionID string, v *voiceSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = v
}

func (r *voiceRegistry) get(sessionID string) *voiceSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[sessionID]
}

func (r *voiceRegistry) remove(sessionID string) {
	r.mu.Lock()
	v := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if v != nil {
		v.coordinator.Reset()
	}
}
