package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kwabenadarko/navicare/internal/reliability"
	"github.com/kwabenadarko/navicare/internal/triage"
)

const (
	remoteTimeout       = 60 * time.Second
	remoteRetryAttempts = 2
	remoteBackoffBase   = 200 * time.Millisecond
	remoteBackoffCap    = 2 * time.Second
)

// RemoteEngine forwards reasoning to a clinician-operated HTTP service that
// speaks the same request shape. Transient failures are retried once.
type RemoteEngine struct {
	url    string
	client *http.Client
}

func NewRemoteEngine(url string) *RemoteEngine {
	return &RemoteEngine{
		url: strings.TrimRight(strings.TrimSpace(url), "/"),
		client: &http.Client{
			Timeout: remoteTimeout,
		},
	}
}

type remoteRequest struct {
	Operation string       `json:"operation"`
	Language  string       `json:"language"`
	History   []remoteTurn `json:"history,omitempty"`
}

type remoteTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type remoteResponse struct {
	Text         string       `json:"text"`
	IsComplete   bool         `json:"is_complete"`
	NextQuestion string       `json:"next_question"`
	Verdict      *wireVerdict `json:"verdict"`
}

func (e *RemoteEngine) Greeting(ctx context.Context, language string) (string, error) {
	res, err := e.call(ctx, remoteRequest{Operation: "greeting", Language: language})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

func (e *RemoteEngine) Triage(ctx context.Context, history []triage.Turn, language string) (triage.Reply, error) {
	res, err := e.call(ctx, remoteRequest{Operation: "triage", Language: language, History: toRemoteTurns(history)})
	if err != nil {
		return triage.Reply{}, err
	}
	reply := triage.Reply{
		Complete:     res.IsComplete,
		NextQuestion: strings.TrimSpace(res.NextQuestion),
	}
	if res.Verdict != nil {
		reply.Verdict = &triage.Verdict{
			Level:          triage.UrgencyLevel(strings.ToUpper(strings.TrimSpace(res.Verdict.Level))),
			Specialty:      strings.TrimSpace(res.Verdict.Specialty),
			Summary:        strings.TrimSpace(res.Verdict.Summary),
			Recommendation: strings.TrimSpace(res.Verdict.Recommendation),
		}
	}
	if reply.Complete && reply.Verdict == nil {
		return triage.Reply{}, fmt.Errorf("remote reply marked complete without a verdict")
	}
	return reply, nil
}

func (e *RemoteEngine) Support(ctx context.Context, history []triage.Turn, language string) (string, error) {
	res, err := e.call(ctx, remoteRequest{Operation: "support", Language: language, History: toRemoteTurns(history)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

func (e *RemoteEngine) call(ctx context.Context, req remoteRequest) (remoteResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return remoteResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < remoteRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return remoteResponse{}, ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt, remoteBackoffBase, remoteBackoffCap)):
			}
		}

		res, retryable, err := e.callOnce(ctx, payload)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return remoteResponse{}, lastErr
}

func (e *RemoteEngine) callOnce(ctx context.Context, payload []byte) (remoteResponse, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return remoteResponse{}, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := e.client.Do(httpReq)
	if err != nil {
		return remoteResponse{}, reliability.IsRetryableError(err), fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		err := fmt.Errorf("reasoning http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		return remoteResponse{}, reliability.IsRetryableHTTPStatus(res.StatusCode), err
	}

	var out remoteResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return remoteResponse{}, false, fmt.Errorf("decode response: %w", err)
	}
	return out, false, nil
}

func toRemoteTurns(history []triage.Turn) []remoteTurn {
	out := make([]remoteTurn, 0, len(history))
	for _, turn := range history {
		out = append(out, remoteTurn{Role: string(turn.Role), Text: turn.Text})
	}
	return out
}
