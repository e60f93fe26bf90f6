package archive

import (
	"context"
	"time"
)

// TurnRecord stores a single user or assistant conversational turn, with
// PII already redacted by the caller.
type TurnRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	PIIRedacted bool      `json:"pii_redacted"`
	CreatedAt   time.Time `json:"created_at"`
}

// VerdictRecord stores the terminal triage result of a session.
type VerdictRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	Level       string    `json:"level"`
	Specialty   string    `json:"specialty"`
	Summary     string    `json:"summary"`
	PIIRedacted bool      `json:"pii_redacted"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists assessment transcripts and verdicts. Writes are
// best-effort from the controller's perspective; failures are logged, not
// surfaced.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	SaveVerdict(ctx context.Context, record VerdictRecord) error
	SessionTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
	Close() error
}
