package voiceio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPSynthesizer calls a speech synthesis service that returns base64
// PCM16LE audio. The service's output format is fixed by configuration, not
// negotiated per request.
type HTTPSynthesizer struct {
	url          string
	voice        string
	sampleRateHz int
	channels     int
	client       *http.Client
}

func NewHTTPSynthesizer(url, voice string, sampleRateHz, channels int) *HTTPSynthesizer {
	if sampleRateHz <= 0 {
		sampleRateHz = 24000
	}
	if channels <= 0 {
		channels = 1
	}
	return &HTTPSynthesizer{
		url:          strings.TrimSpace(url),
		voice:        voice,
		sampleRateHz: sampleRateHz,
		channels:     channels,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type synthesisRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice,omitempty"`
}

type synthesisResponse struct {
	AudioBase64 string `json:"audio_base64"`
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, language string) (Synthesis, error) {
	payload, err := json.Marshal(synthesisRequest{Text: text, Language: language, Voice: s.voice})
	if err != nil {
		return Synthesis{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return Synthesis{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return Synthesis{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Synthesis{}, fmt.Errorf("synthesis http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out synthesisResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Synthesis{}, fmt.Errorf("decode response: %w", err)
	}
	return Synthesis{
		AudioBase64:  out.AudioBase64,
		SampleRateHz: s.sampleRateHz,
		Channels:     s.channels,
	}, nil
}
