package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kwabenadarko/navicare/internal/triage"
)

type wireVerdict struct {
	Level          string `json:"level"`
	Specialty      string `json:"specialty"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

type wireReply struct {
	IsComplete   bool         `json:"is_complete"`
	NextQuestion string       `json:"next_question"`
	Verdict      *wireVerdict `json:"verdict"`
}

// parseTriageReply decodes a model answer into a structured reply. Models
// occasionally wrap JSON in markdown fences, so those are stripped first.
func parseTriageReply(raw string) (triage.Reply, error) {
	trimmed := stripFences(raw)
	var wire wireReply
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return triage.Reply{}, fmt.Errorf("decode triage reply: %w", err)
	}
	reply := triage.Reply{
		Complete:     wire.IsComplete,
		NextQuestion: strings.TrimSpace(wire.NextQuestion),
	}
	if wire.Verdict != nil {
		level := triage.UrgencyLevel(strings.ToUpper(strings.TrimSpace(string(wire.Verdict.Level))))
		reply.Verdict = &triage.Verdict{
			Level:          level,
			Specialty:      strings.TrimSpace(wire.Verdict.Specialty),
			Summary:        strings.TrimSpace(wire.Verdict.Summary),
			Recommendation: strings.TrimSpace(wire.Verdict.Recommendation),
		}
	}
	if reply.Complete && reply.Verdict == nil {
		return triage.Reply{}, fmt.Errorf("triage reply marked complete without a verdict")
	}
	return reply, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
