package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI talks to an OpenAI-compatible chat completions endpoint with a
// bearer credential. The generated text lives at choices[0].message.content.
type OpenAI struct {
	BaseURL string
	Model   string
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o OpenAI) Name() string { return "openai" }

func (o OpenAI) NewRequest(ctx context.Context, apiKey, system, user string) (*http.Request, error) {
	model := o.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.4,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	base := o.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	url := strings.TrimRight(base, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}

func (o OpenAI) ExtractText(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Kind: KindEnvelope, Message: "invalid JSON response", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindEmpty, Message: "no choices in response"}
	}
	if resp.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindEmpty, Message: "empty response text"}
	}
	return resp.Choices[0].Message.Content, nil
}

func (o OpenAI) ErrorMessage(body []byte) string {
	return decodeErrorMessage(body)
}

// NewProvider returns the adapter registered under name.
func NewProvider(name, baseURL, model string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "gemini":
		return Gemini{BaseURL: baseURL, Model: model}, nil
	case "openai":
		return OpenAI{BaseURL: baseURL, Model: model}, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", name)
}
