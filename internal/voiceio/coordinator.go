package voiceio

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/kwabenadarko/navicare/internal/audio"
	"github.com/kwabenadarko/navicare/internal/observability"
)

// ErrDeviceClosed is returned by output devices after Close.
var ErrDeviceClosed = errors.New("output device closed")

const synthesisTimeout = 20 * time.Second

// State is a point-in-time view of the coordinator.
type State struct {
	Listening bool `json:"listening"`
	Speaking  bool `json:"speaking"`
}

// Coordinator owns microphone capture and speech playback for one session.
// At most one utterance plays at a time and at most one capture session is
// live at a time. Every failure path is soft: voice trouble never takes the
// text conversation down.
type Coordinator struct {
	capture CaptureProvider
	synth   Synthesizer
	devices DeviceFactory
	metrics *observability.Metrics

	mu           sync.Mutex
	listening    bool
	speaking     bool
	session      CaptureSession
	captureGen   uint64
	playGen      uint64
	device       OutputDevice
	onTranscript TranscriptHandler
}

func NewCoordinator(capture CaptureProvider, synth Synthesizer, devices DeviceFactory, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		capture: capture,
		synth:   synth,
		devices: devices,
		metrics: metrics,
	}
}

// SetTranscriptHandler installs the callback invoked with each final
// transcript. It must be set before StartListening.
func (c *Coordinator) SetTranscriptHandler(h TranscriptHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTranscript = h
}

// StartListening begins a capture session. If one is already live it is
// stopped first and replaced, so a second press of the mic always wins.
func (c *Coordinator) StartListening(ctx context.Context, language string) error {
	if c.capture == nil {
		return errors.New("no capture provider configured")
	}

	c.mu.Lock()
	if c.session != nil {
		c.stopCaptureLocked()
	}
	c.captureGen++
	gen := c.captureGen
	c.mu.Unlock()

	session, events, err := c.capture.StartCapture(ctx, language)
	if err != nil {
		c.countSpeechEvent("capture_start_failed")
		return err
	}

	c.mu.Lock()
	if gen != c.captureGen {
		// Lost a race with a newer StartListening or a Reset.
		c.mu.Unlock()
		_ = session.Stop()
		return nil
	}
	c.session = session
	c.listening = true
	c.mu.Unlock()

	c.countSpeechEvent("capture_started")
	go c.consumeCapture(gen, events)
	return nil
}

// StopListening ends the live capture session, if any.
func (c *Coordinator) StopListening() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopCaptureLocked()
}

func (c *Coordinator) stopCaptureLocked() {
	if c.session != nil {
		_ = c.session.Stop()
		c.session = nil
	}
	c.listening = false
	c.captureGen++
}

func (c *Coordinator) consumeCapture(gen uint64, events <-chan CaptureEvent) {
	for ev := range events {
		switch ev.Type {
		case CaptureEventTranscript:
			c.mu.Lock()
			stale := gen != c.captureGen
			handler := c.onTranscript
			if !stale {
				c.listening = false
				c.session = nil
			}
			c.mu.Unlock()
			if stale {
				return
			}
			c.countSpeechEvent("transcript")
			if handler != nil && ev.Transcript != "" {
				handler(ev.Transcript)
			}
		case CaptureEventError:
			log.Printf("voiceio: capture error code=%s detail=%s", ev.Code, ev.Detail)
			c.countSpeechEvent("capture_error")
			c.finishCapture(gen)
		case CaptureEventEnd:
			c.finishCapture(gen)
		}
	}
	c.finishCapture(gen)
}

func (c *Coordinator) finishCapture(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.captureGen {
		return
	}
	c.listening = false
	c.session = nil
}

// Speak synthesizes text and plays it. It returns false without doing
// anything when an utterance is already playing. Synthesis and playback
// failures are logged and swallowed.
func (c *Coordinator) Speak(ctx context.Context, text, language string) bool {
	if c.synth == nil || text == "" {
		return false
	}

	c.mu.Lock()
	if c.speaking {
		c.mu.Unlock()
		return false
	}
	c.speaking = true
	gen := c.playGen
	c.mu.Unlock()

	go c.speak(ctx, text, language, gen)
	return true
}

func (c *Coordinator) speak(ctx context.Context, text, language string, gen uint64) {
	defer func() {
		c.mu.Lock()
		if gen == c.playGen {
			c.speaking = false
		}
		c.mu.Unlock()
	}()

	synthCtx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	started := time.Now()
	res, err := c.synth.Synthesize(synthCtx, text, language)
	if c.metrics != nil {
		c.metrics.ObserveSynthesisLatency(time.Since(started))
	}
	if err != nil {
		log.Printf("voiceio: synthesis failed: %v", err)
		c.countSpeechEvent("synthesis_failed")
		return
	}
	if res.AudioBase64 == "" {
		return
	}

	buf, err := audio.DecodePCM16(res.AudioBase64, res.SampleRateHz, res.Channels)
	if err != nil {
		log.Printf("voiceio: synthesized audio unusable: %v", err)
		c.countSpeechEvent("decode_failed")
		return
	}

	if c.playbackStale(gen) {
		c.countSpeechEvent("playback_discarded")
		return
	}

	device, err := c.acquireDevice()
	if err != nil {
		log.Printf("voiceio: no output device: %v", err)
		c.countSpeechEvent("device_failed")
		return
	}

	if err := device.Play(ctx, buf); err != nil {
		if errors.Is(err, ErrDeviceClosed) {
			if c.playbackStale(gen) {
				// Reset closed the device mid-play. The utterance belongs
				// to the previous session lifecycle and must not carry over.
				c.countSpeechEvent("playback_discarded")
				return
			}
			// The device went away under us without a reset. Drop it and
			// retry once on a fresh one.
			c.dropDevice(device)
			if device, err = c.acquireDevice(); err == nil {
				err = device.Play(ctx, buf)
			}
		}
		if err != nil {
			log.Printf("voiceio: playback failed: %v", err)
			c.countSpeechEvent("playback_failed")
			return
		}
	}
	c.countSpeechEvent("played")
}

func (c *Coordinator) acquireDevice() (OutputDevice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		return c.device, nil
	}
	if c.devices == nil {
		return nil, errors.New("no device factory configured")
	}
	device, err := c.devices()
	if err != nil {
		return nil, err
	}
	c.device = device
	return device, nil
}

func (c *Coordinator) playbackStale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.playGen
}

func (c *Coordinator) dropDevice(device OutputDevice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == device {
		c.device = nil
	}
}

// Reset stops capture and releases the output device. The next Speak call
// creates a fresh device.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.stopCaptureLocked()
	device := c.device
	c.device = nil
	c.speaking = false
	c.playGen++
	c.mu.Unlock()

	if device != nil {
		if err := device.Close(); err != nil {
			log.Printf("voiceio: device close: %v", err)
		}
	}
}

// Snapshot returns the current voice state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Listening: c.listening, Speaking: c.speaking}
}

func (c *Coordinator) countSpeechEvent(event string) {
	if c.metrics == nil {
		return
	}
	c.metrics.SpeechEvents.WithLabelValues(event).Inc()
}
