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
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-pro"
)

// Gemini talks to the generateContent endpoint. The generated text lives at
// candidates[0].content.parts[0].text.
type Gemini struct {
	BaseURL string
	Model   string
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type providerError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g Gemini) Name() string { return "gemini" }

func (g Gemini) endpoint() string {
	base := g.BaseURL
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	model := g.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(base, "/"), model)
}

func (g Gemini) NewRequest(ctx context.Context, apiKey, system, user string) (*http.Request, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: system + "\n\n" + user}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.4,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 2048,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)
	return req, nil
}

func (g Gemini) ExtractText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Kind: KindEnvelope, Message: "invalid JSON response", Err: err}
	}
	if len(resp.Candidates) == 0 {
		return "", &Error{Kind: KindEmpty, Message: "no candidates in response"}
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", &Error{Kind: KindEmpty, Message: "no content parts in response"}
	}
	if parts[0].Text == "" {
		return "", &Error{Kind: KindEmpty, Message: "empty response text"}
	}
	return parts[0].Text, nil
}

func (g Gemini) ErrorMessage(body []byte) string {
	return decodeErrorMessage(body)
}

func decodeErrorMessage(body []byte) string {
	var pe providerError
	if err := json.Unmarshal(body, &pe); err != nil || pe.Error == nil {
		return ""
	}
	if pe.Error.Message == "" {
		return "Unknown error"
	}
	return pe.Error.Message
}
