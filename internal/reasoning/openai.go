package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kwabenadarko/navicare/internal/triage"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIEngine backs the conversation with the OpenAI chat completion API.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

func NewOpenAIEngine(apiKey, model string) *OpenAIEngine {
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (e *OpenAIEngine) Greeting(ctx context.Context, language string) (string, error) {
	text, err := e.complete(ctx, []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf(greetingPrompt, language),
	}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *OpenAIEngine) Triage(ctx context.Context, history []triage.Turn, language string) (triage.Reply, error) {
	msgs := e.withHistory(triageSystemPrompt+languageSuffix(language), history)
	text, err := e.complete(ctx, msgs)
	if err != nil {
		return triage.Reply{}, err
	}
	return parseTriageReply(text)
}

func (e *OpenAIEngine) Support(ctx context.Context, history []triage.Turn, language string) (string, error) {
	msgs := e.withHistory(supportSystemPrompt+languageSuffix(language), history)
	text, err := e.complete(ctx, msgs)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (e *OpenAIEngine) withHistory(system string, history []triage.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == triage.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return msgs
}

func (e *OpenAIEngine) complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    msgs,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func languageSuffix(language string) string {
	language = strings.TrimSpace(language)
	if language == "" || strings.EqualFold(language, "English") {
		return ""
	}
	return "\n\nAnswer in " + language + "."
}
