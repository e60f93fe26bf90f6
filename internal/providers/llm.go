package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	errMissingSpecialty = errors.New("provider search requires a specialty")
	errMissingLocation  = errors.New("provider search requires a location")
)

const directoryPrompt = `You are a healthcare provider directory for Ghana. Given a medical specialty, a location and an optional insurance hint, return a ranked JSON array of up to five plausible providers:
[{"name": "...", "address": "...", "phone": "...", "verified": true|false, "booking_url": ""}]
Answer with the JSON array only, best match first.`

const defaultDirectoryModel = "gpt-4o-mini"

// LLMDirectory asks a language model for provider matches. There is no
// canonical registry to query, so the model plays directory and results are
// marked unverified unless it says otherwise.
type LLMDirectory struct {
	client *openai.Client
	model  string
}

func NewLLMDirectory(apiKey, model string) *LLMDirectory {
	if strings.TrimSpace(model) == "" {
		model = defaultDirectoryModel
	}
	return &LLMDirectory{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (d *LLMDirectory) Search(ctx context.Context, q Query) ([]Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Specialty: %s\nLocation: %s", q.Specialty, q.Location)
	if strings.TrimSpace(q.InsuranceHint) != "" {
		user += "\nInsurance: " + q.InsuranceHint
	}
	if strings.TrimSpace(q.Language) != "" && !strings.EqualFold(q.Language, "English") {
		user += "\nAnswer in " + q.Language + "."
	}

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: directoryPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("directory completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("directory completion returned no choices")
	}
	return parseRecords(resp.Choices[0].Message.Content)
}

func parseRecords(raw string) ([]Record, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var records []Record
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("decode directory reply: %w", err)
	}

	out := records[:0]
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		out = append(out, r)
		if len(out) == 5 {
			break
		}
	}
	return out, nil
}
