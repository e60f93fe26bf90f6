package triage

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kwabenadarko/navicare/internal/archive"
	"github.com/kwabenadarko/navicare/internal/observability"
	"github.com/kwabenadarko/navicare/internal/policy"
)

// Fallback texts for fail-soft paths. Centralized so the behavior stays
// auditable and testable.
const (
	DefaultGreeting      = "Hello, I am NaviCare. How can I help you today?"
	FallbackNextQuestion = "Can you tell me more?"
	FallbackErrorText    = "I'm having a technical issue. Please try again or seek medical advice if your symptoms are concerning."
)

var errNoEngine = errors.New("no reasoning engine configured")

const (
	greetingTimeout  = 15 * time.Second
	archiveTimeout   = 2 * time.Second
	defaultLanguage  = "English"
	defaultMode      = ModeTriage
	historySoftLimit = 200
)

// VoiceResetter cancels capture and releases the playback device. The
// coordinator in internal/voiceio satisfies it.
type VoiceResetter interface {
	Reset()
}

// Controller owns one assessment session: conversation history, mode,
// verdict, escalation flag and the pending guard. All mutation funnels
// through its operations; callers only read snapshots.
type Controller struct {
	ID        string
	UserID    string
	StartedAt time.Time

	engine  Engine
	voice   VoiceResetter
	archive archive.Store
	metrics *observability.Metrics

	mu              sync.Mutex
	state           State
	mode            Mode
	language        string
	history         []Turn
	verdict         *Verdict
	escalated       bool
	pending         bool
	epoch           uint64
	greetingFetched chan struct{}
	lastActivityAt  time.Time
}

// NewController builds an idle controller. voice and store may be nil.
func NewController(userID string, engine Engine, voice VoiceResetter, store archive.Store, metrics *observability.Metrics) *Controller {
	now := time.Now().UTC()
	return &Controller{
		ID:             uuid.NewString(),
		UserID:         userID,
		StartedAt:      now,
		engine:         engine,
		voice:          voice,
		archive:        store,
		metrics:        metrics,
		state:          StateIdle,
		mode:           defaultMode,
		language:       defaultLanguage,
		lastActivityAt: now,
	}
}

// Start accepts consent and opens the intake conversation. The greeting
// comes from the reasoning service; on any failure the fixed default is
// used instead. Start never returns an error.
func (c *Controller) Start(ctx context.Context, language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = defaultLanguage
	}

	c.mu.Lock()
	if c.state != StateIdle {
		// Another Start already opened the session. Wait out its greeting
		// fetch so both callers report the same first assistant turn.
		fetched := c.greetingFetched
		c.mu.Unlock()
		if fetched != nil {
			select {
			case <-fetched:
			case <-ctx.Done():
			}
		}
		c.mu.Lock()
		greeting := c.firstAssistantTextLocked()
		c.mu.Unlock()
		return greeting
	}
	c.state = StateIntake
	c.language = language
	epoch := c.epoch
	fetched := make(chan struct{})
	c.greetingFetched = fetched
	c.lastActivityAt = time.Now().UTC()
	c.mu.Unlock()
	defer close(fetched)

	greeting := DefaultGreeting
	if c.engine != nil {
		gctx, cancel := context.WithTimeout(ctx, greetingTimeout)
		text, err := c.engine.Greeting(gctx, language)
		cancel()
		if err != nil {
			log.Printf("triage %s: greeting fetch failed, using fallback: %v", c.ID, err)
			c.countEvent("greeting_fallback")
		} else if strings.TrimSpace(text) != "" {
			greeting = strings.TrimSpace(text)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Session was reset while the greeting was in flight.
		return DefaultGreeting
	}
	c.appendTurnLocked(RoleAssistant, greeting)
	c.countEvent("started")
	return greeting
}

// Submit appends a user turn and drives one reasoning round trip. It is a
// no-op returning false when text is blank or a call is already pending.
// Every outcome clears pending; reasoning failures surface only as a
// fallback assistant turn.
//
// Retained history is capped at historySoftLimit turns. Once the cap is
// reached the oldest turns are dropped from the session and from the
// context sent to the reasoning service; archived turn records keep the
// full transcript.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if c.pending || c.state == StateIdle {
		c.mu.Unlock()
		return false
	}
	c.pending = true
	if c.state == StateIntake {
		c.state = StateAsking
	}
	epoch := c.epoch
	mode := c.mode
	language := c.language
	c.appendTurnLocked(RoleUser, text)
	history := cloneTurns(c.history)
	c.lastActivityAt = time.Now().UTC()
	c.mu.Unlock()

	start := time.Now()
	var (
		reply      Reply
		supportTxt string
		callErr    error
	)
	if c.engine == nil {
		callErr = errNoEngine
	} else if mode == ModeSupport {
		supportTxt, callErr = c.engine.Support(ctx, history, language)
	} else {
		reply, callErr = c.engine.Triage(ctx, history, language)
	}
	c.observeReasoning(string(mode), time.Since(start), callErr)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Reset happened mid-flight; discard the stale reply. Reset already
		// cleared pending for the new session lifecycle.
		return true
	}
	c.pending = false

	switch {
	case callErr != nil:
		log.Printf("triage %s: reasoning call failed (%s mode): %v", c.ID, mode, callErr)
		c.appendTurnLocked(RoleAssistant, FallbackErrorText)
		c.countEvent("reasoning_fallback")
	case mode == ModeSupport:
		answer := strings.TrimSpace(supportTxt)
		if answer == "" {
			answer = FallbackNextQuestion
		}
		c.appendTurnLocked(RoleAssistant, answer)
	case reply.Complete && reply.Verdict != nil:
		c.applyVerdictLocked(*reply.Verdict)
	default:
		question := strings.TrimSpace(reply.NextQuestion)
		if question == "" {
			question = FallbackNextQuestion
		}
		c.appendTurnLocked(RoleAssistant, question)
	}
	return true
}

func (c *Controller) applyVerdictLocked(v Verdict) {
	if !ValidLevel(v.Level) {
		v.Level = LevelRoutine
	}
	if c.verdict == nil {
		verdict := v
		c.verdict = &verdict
		c.state = StateResolved
		if c.metrics != nil {
			c.metrics.Verdicts.WithLabelValues(string(v.Level)).Inc()
		}
		c.archiveVerdictBestEffort(verdict)
	}
	if v.Level == LevelEmergency {
		c.escalated = true
		c.countEvent("emergency_escalated")
	}
	c.appendTurnLocked(RoleAssistant, v.Recommendation)
}

// SwitchMode changes where subsequent submissions are routed. History,
// verdict, escalation and pending are untouched.
func (c *Controller) SwitchMode(mode Mode) {
	if mode != ModeTriage && mode != ModeSupport {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.lastActivityAt = time.Now().UTC()
}

// Reset returns the session to Idle: history, verdict and the escalation
// flag are cleared, any in-flight reply becomes stale, capture stops and
// the audio output device is released.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.epoch++
	c.state = StateIdle
	c.mode = defaultMode
	c.history = nil
	c.verdict = nil
	c.escalated = false
	c.pending = false
	c.greetingFetched = nil
	c.lastActivityAt = time.Now().UTC()
	voice := c.voice
	c.mu.Unlock()

	if voice != nil {
		voice.Reset()
	}
	c.countEvent("reset")
}

// Snapshot returns a deep copy of the observable session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:              c.state,
		Mode:               c.mode,
		Language:           c.language,
		History:            cloneTurns(c.history),
		EmergencyEscalated: c.escalated,
		Pending:            c.pending,
	}
	if c.verdict != nil {
		v := *c.verdict
		snap.Verdict = &v
	}
	return snap
}

// Verdict returns the terminal verdict, or nil while unresolved.
func (c *Controller) Verdict() *Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verdict == nil {
		return nil
	}
	v := *c.verdict
	return &v
}

// LastActivityAt is read by the manager's inactivity janitor.
func (c *Controller) LastActivityAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivityAt
}

// Touch refreshes the inactivity clock without mutating session state.
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActivityAt = time.Now().UTC()
}

func (c *Controller) appendTurnLocked(role Role, text string) {
	turn := Turn{Role: role, Text: text, CreatedAt: time.Now().UTC()}
	c.history = append(c.history, turn)
	if len(c.history) > historySoftLimit {
		c.history = c.history[len(c.history)-historySoftLimit:]
	}
	c.archiveTurnBestEffort(turn)
}

func (c *Controller) firstAssistantTextLocked() string {
	for _, t := range c.history {
		if t.Role == RoleAssistant {
			return t.Text
		}
	}
	return DefaultGreeting
}

func (c *Controller) archiveTurnBestEffort(turn Turn) {
	if c.archive == nil {
		return
	}
	redacted, changed := policy.RedactPII(turn.Text)
	rec := archive.TurnRecord{
		ID:          uuid.NewString(),
		UserID:      c.UserID,
		SessionID:   c.ID,
		Role:        string(turn.Role),
		Content:     redacted,
		PIIRedacted: changed,
		CreatedAt:   turn.CreatedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := c.archive.SaveTurn(ctx, rec); err != nil {
			log.Printf("triage %s: archive turn failed: %v", c.ID, err)
		}
	}()
}

func (c *Controller) archiveVerdictBestEffort(v Verdict) {
	if c.archive == nil {
		return
	}
	summary, changed := policy.RedactPII(v.Summary)
	rec := archive.VerdictRecord{
		ID:          uuid.NewString(),
		UserID:      c.UserID,
		SessionID:   c.ID,
		Level:       string(v.Level),
		Specialty:   v.Specialty,
		Summary:     summary,
		PIIRedacted: changed,
		CreatedAt:   time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := c.archive.SaveVerdict(ctx, rec); err != nil {
			log.Printf("triage %s: archive verdict failed: %v", c.ID, err)
		}
	}()
}

func (c *Controller) countEvent(event string) {
	if c.metrics != nil {
		c.metrics.SessionEvents.WithLabelValues(event).Inc()
	}
}

func (c *Controller) observeReasoning(mode string, d time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveReasoningLatency(mode, d)
	if err != nil {
		c.metrics.ProviderErrors.WithLabelValues("reasoning_"+mode, "call_failed").Inc()
	}
}

func cloneTurns(in []Turn) []Turn {
	if len(in) == 0 {
		return nil
	}
	out := make([]Turn, len(in))
	copy(out, in)
	return out
}
