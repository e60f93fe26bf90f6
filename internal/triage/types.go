package triage

import (
	"context"
	"time"
)

// Role attributes a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mode selects which reasoning endpoint a submitted turn is routed to.
type Mode string

const (
	ModeTriage  Mode = "triage"
	ModeSupport Mode = "support"
)

// State is the controller lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateIntake   State = "intake"
	StateAsking   State = "asking"
	StateResolved State = "resolved"
)

// UrgencyLevel is the terminal triage classification.
type UrgencyLevel string

const (
	LevelEmergency UrgencyLevel = "EMERGENCY"
	LevelUrgent    UrgencyLevel = "URGENT"
	LevelRoutine   UrgencyLevel = "ROUTINE"
	LevelSelfCare  UrgencyLevel = "SELF_CARE"
)

// ValidLevel reports whether l is one of the defined urgency levels.
func ValidLevel(l UrgencyLevel) bool {
	switch l {
	case LevelEmergency, LevelUrgent, LevelRoutine, LevelSelfCare:
		return true
	default:
		return false
	}
}

// Turn is one utterance in the conversation. Immutable once appended;
// history ordering defines the context sent to the reasoning service.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Verdict is the structured terminal triage result. Produced at most once
// per session; a new assessment resets it.
type Verdict struct {
	Level          UrgencyLevel `json:"level"`
	Specialty      string       `json:"specialty,omitempty"`
	Summary        string       `json:"summary"`
	Recommendation string       `json:"recommendation"`
}

// Snapshot is a read-only copy of the session state for callers.
type Snapshot struct {
	State              State    `json:"state"`
	Mode               Mode     `json:"mode"`
	Language           string   `json:"language"`
	History            []Turn   `json:"history"`
	Verdict            *Verdict `json:"verdict,omitempty"`
	EmergencyEscalated bool     `json:"emergency_escalated"`
	Pending            bool     `json:"pending"`
}

// Reply is the reasoning service's answer to a triage-mode submission:
// either a follow-up question or a completed verdict.
type Reply struct {
	Complete     bool
	NextQuestion string
	Verdict      *Verdict
}

// Engine is the external reasoning service contract. Implementations live
// in internal/reasoning; all three calls may fail and the controller
// absorbs every failure with a fixed fallback.
type Engine interface {
	Greeting(ctx context.Context, language string) (string, error)
	Triage(ctx context.Context, history []Turn, language string) (Reply, error)
	Support(ctx context.Context, history []Turn, language string) (string, error)
}
