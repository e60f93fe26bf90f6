package reasoning

import (
	"context"
	"strings"

	"github.com/kwabenadarko/navicare/internal/triage"
)

// MockEngine is a deterministic engine for local development and tests. It
// walks a fixed intake script and escalates immediately on red-flag phrases.
type MockEngine struct{}

func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

var mockIntakeQuestions = []string{
	"How long have you been experiencing this?",
	"On a scale of 1 to 10, how severe is it right now?",
	"Do you have any other symptoms alongside it?",
}

func (e *MockEngine) Greeting(ctx context.Context, language string) (string, error) {
	return "Hello, I am NaviCare. Please describe your symptoms and I will help you find the right care.", nil
}

func (e *MockEngine) Triage(ctx context.Context, history []triage.Turn, language string) (triage.Reply, error) {
	userTurns := 0
	for _, turn := range history {
		if turn.Role != triage.RoleUser {
			continue
		}
		userTurns++
		if hasRedFlag(turn.Text) {
			return triage.Reply{
				Complete: true,
				Verdict: &triage.Verdict{
					Level:          triage.LevelEmergency,
					Specialty:      "Emergency Medicine",
					Summary:        "Patient reported a red-flag symptom during intake.",
					Recommendation: "Go to the nearest emergency room now, or call 112 or 999.",
				},
			}, nil
		}
	}

	if userTurns > len(mockIntakeQuestions) {
		return triage.Reply{
			Complete: true,
			Verdict: &triage.Verdict{
				Level:          triage.LevelRoutine,
				Specialty:      "General Practice",
				Summary:        "Symptoms collected over a structured intake, no red flags reported.",
				Recommendation: "Book a primary care appointment within the next few days and monitor your symptoms.",
			},
		}, nil
	}

	question := mockIntakeQuestions[len(mockIntakeQuestions)-1]
	if userTurns >= 1 && userTurns <= len(mockIntakeQuestions) {
		question = mockIntakeQuestions[userTurns-1]
	}
	return triage.Reply{NextQuestion: question}, nil
}

func (e *MockEngine) Support(ctx context.Context, history []triage.Turn, language string) (string, error) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != triage.RoleUser {
			continue
		}
		text := strings.ToLower(history[i].Text)
		switch {
		case strings.Contains(text, "momo") || strings.Contains(text, "pay") || strings.Contains(text, "premium"):
			return "You can support NaviCare with a Mobile Money contribution of Ghc25, which unlocks specialist matching and unlimited assessment history.", nil
		case strings.Contains(text, "privacy") || strings.Contains(text, "data"):
			return "We protect your data with industry-standard encryption and do not store identifiable health information by default.", nil
		}
		break
	}
	return "I can help with questions about the NaviCare platform. For anything medical, please start a new symptom assessment.", nil
}

func hasRedFlag(text string) bool {
	lower := strings.ToLower(text)
	for _, flag := range redFlags {
		if strings.Contains(lower, flag) {
			return true
		}
	}
	return false
}
