// Package llm turns a meeting transcript into the structured note JSON by
// calling a remote text-generation API exactly once.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"autonotes/internal/health"
	"autonotes/internal/schema"
)

// DefaultTimeout bounds the single request made per generation.
const DefaultTimeout = 30 * time.Second

// Generator produces validated note JSON from a transcript.
type Generator interface {
	Generate(ctx context.Context, transcript string) (map[string]any, error)
}

// Provider adapts one upstream API: how to build its request and where the
// generated text lives in its response envelope.
type Provider interface {
	Name() string
	NewRequest(ctx context.Context, apiKey, system, user string) (*http.Request, error)
	// ExtractText returns the generated text. Envelope problems are returned
	// as *Error with KindEnvelope or KindEmpty.
	ExtractText(body []byte) (string, error)
	// ErrorMessage pulls the provider's error message from a non-2xx body.
	ErrorMessage(body []byte) string
}

// Client implements Generator over a Provider.
type Client struct {
	provider Provider
	apiKey   string
	http     *http.Client
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(p Provider, apiKey string, opts ...Option) *Client {
	c := &Client{
		provider: p,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: DefaultTimeout},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) fail(kind Kind, status int, err error, format string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Provider:   c.provider.Name(),
		StatusCode: status,
		Message:    fmt.Sprintf(format, args...),
		Err:        err,
	}
}

// Generate sends the transcript to the provider and returns the parsed,
// schema-checked reply. It never retries.
func (c *Client) Generate(ctx context.Context, transcript string) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, c.fail(KindUnconfigured, 0, nil, "API key not configured")
	}

	req, err := c.provider.NewRequest(ctx, c.apiKey, systemPrompt, userPrompt(transcript))
	if err != nil {
		return nil, c.fail(KindRequest, 0, err, "build request: %v", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(err, c.budget(ctx, start))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(err, c.budget(ctx, start))
	}

	c.log.Debug("llm response received",
		"provider", c.provider.Name(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("API returned error %d", resp.StatusCode)
		if detail := c.provider.ErrorMessage(body); detail != "" {
			msg += ": " + detail
		}
		return nil, c.fail(KindStatus, resp.StatusCode, nil, "%s", msg)
	}

	text, err := c.provider.ExtractText(body)
	if err != nil {
		if e, ok := AsError(err); ok {
			e.Provider = c.provider.Name()
			return nil, e
		}
		return nil, c.fail(KindEnvelope, 0, err, "unexpected response structure: %v", err)
	}

	return parseNotes(c.provider.Name(), text)
}

// parseNotes decodes generated text into the note JSON and validates it.
func parseNotes(provider, text string) (map[string]any, error) {
	cleaned := stripFences(text)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &Error{
			Kind:     KindParse,
			Provider: provider,
			Message:  fmt.Sprintf("failed to parse LLM response as JSON: %v. Response text: %s", err, snippet(cleaned)),
			Err:      err,
		}
	}

	if err := schema.ValidateLLMOutput(data); err != nil {
		return nil, err
	}
	return data.(map[string]any), nil
}

// budget is the time the request was allowed: the client timeout or the
// context deadline, whichever is shorter. Zero means unbounded.
func (c *Client) budget(ctx context.Context, start time.Time) time.Duration {
	d := c.http.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if rem := deadline.Sub(start); d <= 0 || rem < d {
			d = rem
		}
	}
	return max(d, 0)
}

func (c *Client) transportError(err error, budget time.Duration) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		if budget <= 0 {
			return c.fail(KindTimeout, 0, err, "request timed out")
		}
		return c.fail(KindTimeout, 0, err, "request timed out after %s", budget.Round(time.Millisecond))
	case errors.Is(err, context.Canceled):
		return c.fail(KindRequest, 0, err, "request canceled")
	default:
		return c.fail(KindConnection, 0, err, "could not connect: %v", err)
	}
}

// Check makes one real generation call with a canned transcript. It is
// expensive and belongs outside the request hot path.
func (c *Client) Check(ctx context.Context) health.Status {
	data, err := c.Generate(ctx, healthTranscript)
	if err != nil {
		if e, ok := AsError(err); ok {
			return e.Status()
		}
		return health.Fail(health.StateUnhealthy, err.Error())
	}
	if _, ok := data["summary"]; !ok {
		return health.Fail(health.StateUnhealthy, "response has no summary")
	}
	return health.OK()
}
